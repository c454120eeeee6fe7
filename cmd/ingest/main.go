package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"book-rag-api/internal/adapter/openai"
	"book-rag-api/internal/adapter/qdrant"
	"book-rag-api/internal/usecase/ingestion"
	"book-rag-api/pkg/config"

	"github.com/spf13/cobra"
)

func main() {
	var force bool

	rootCmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Chunk, embed and index documents into the vector store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			embeddingClient := openai.NewEmbeddingClient(cfg.OpenAIKey, cfg.OpenAIEmbeddingModel, cfg.EmbeddingDimensions)
			index := qdrant.NewIndex(qdrant.Config{
				URL:        cfg.QdrantURL,
				APIKey:     cfg.QdrantAPIKey,
				Collection: cfg.QdrantCollection,
				Dimension:  cfg.EmbeddingDimensions,
			})

			ctx := context.Background()
			if err := index.EnsureCollection(ctx); err != nil {
				return fmt.Errorf("failed to prepare collection: %w", err)
			}

			chunker := ingestion.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
			pipeline := ingestion.NewPipeline(ingestion.NewProcessor(chunker), embeddingClient, index)

			report := pipeline.IngestDocuments(ctx, args, force)

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))

			if len(report.FailedDocuments) > 0 && len(report.ProcessedDocuments) == 0 {
				return fmt.Errorf("all documents failed")
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&force, "force", false, "re-process documents even if already ingested")

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
