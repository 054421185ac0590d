package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-easyapply-automation/internal/ai"
	"go-easyapply-automation/internal/config"

	"go.uber.org/zap"
)

// Sends one screening question through the configured provider chain and
// prints which provider answered.
func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	chain := ai.NewChainFromOptions(logger, ai.ChainOptions{
		Priority: cfg.AI.Priority,
		Keys:     cfg.AI.Keys,
		Models:   cfg.AI.Models,
		BaseURLs: cfg.AI.BaseURLs,
		Timeout:  cfg.AI.Timeout,
	})
	if chain.Len() == 0 {
		log.Println("No AI provider has an API key. Set GEMINI_API_KEY, GROQ_API_KEY or OPENAI_API_KEY to test the chain.")
		return
	}

	facts := ai.AnswerFacts{
		Salary:            cfg.Profile.SalaryExpectation,
		NoticePeriod:      fmt.Sprintf("%d Days", cfg.Profile.NoticePeriodDays),
		Location:          cfg.Profile.Location,
		Relocation:        cfg.Profile.Relocation,
		WorkAuthorization: cfg.Profile.WorkAuthorization,
		Education:         cfg.Profile.EducationSummary,
	}
	resume := []rune(cfg.Profile.ResumeText)
	if len(resume) > 1500 {
		resume = resume[:1500]
	}
	prompt := ai.BuildAnswerPrompt("How many years of experience do you have with Go?", facts, string(resume))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Println("Sending a sample screening question through the provider chain...")
	answer, provider, err := chain.Generate(ctx, prompt)
	if err != nil {
		log.Fatalf("All providers failed: %v", err)
	}

	fmt.Printf("\nSuccess! %s answered: %s\n", provider, answer)
}
