package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/joho/godotenv"

	"github.com/tradewatch/signal-monitor-go/internal/config"
)

func main() {
	fmt.Println("🔧 Validating Telegram notification configuration...")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Check if Telegram bot token is configured
	if cfg.Telegram.BotToken == "" {
		fmt.Println("❌ TELEGRAM_BOT_TOKEN is not configured")
		os.Exit(1)
	}
	fmt.Printf("✅ TELEGRAM_BOT_TOKEN is configured (length: %d)\n", len(cfg.Telegram.BotToken))

	// Check the operator chat id
	if cfg.Telegram.ChatID == "" {
		fmt.Println("❌ TELEGRAM_CHAT_ID is not configured")
		os.Exit(1)
	}
	chatID, err := strconv.ParseInt(cfg.Telegram.ChatID, 10, 64)
	if err != nil {
		fmt.Printf("❌ TELEGRAM_CHAT_ID %q is not numeric: %v\n", cfg.Telegram.ChatID, err)
		os.Exit(1)
	}
	fmt.Printf("✅ TELEGRAM_CHAT_ID is configured: %d\n", chatID)

	// Try to create bot instance
	b, err := bot.New(cfg.Telegram.BotToken)
	if err != nil {
		fmt.Printf("❌ Failed to create Telegram bot: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Telegram bot created successfully")

	// Try to get bot info (this makes an actual API call)
	fmt.Println("🔍 Testing bot API connection...")
	ctx := context.Background()
	botInfo, err := b.GetMe(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to get bot info: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Bot API connection successful!\n")
	fmt.Printf("   Bot Name: %s\n", botInfo.FirstName)
	fmt.Printf("   Bot Username: @%s\n", botInfo.Username)
	fmt.Printf("   Bot ID: %d\n", botInfo.ID)

	fmt.Println("\n🎉 All Telegram notification checks passed!")
}
