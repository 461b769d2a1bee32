package ai_fx

import (
	"log"
	"os"

	"go.uber.org/fx"

	"wayfare/pkg/utils"
)

var Module = fx.Provide(provideEmbeddingClient, provideCompletionClient)

func provideEmbeddingClient() utils.EmbeddingClientInterface {
	return utils.NewOpenAIEmbeddingClient(os.Getenv("OPENAI_API_KEY"))
}

func provideCompletionClient() utils.CompletionClientInterface {
	client, err := utils.NewGeminiCompletionClient(os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.Fatalf("Failed to create completion client: %v", err)
	}
	return client
}
