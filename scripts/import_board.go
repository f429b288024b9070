package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/quizboard/quizboard-server-go/internal/config"
	"github.com/quizboard/quizboard-server-go/internal/game/state"
	"github.com/quizboard/quizboard-server-go/internal/importer"
	"github.com/quizboard/quizboard-server-go/internal/repository"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	boardID    = flag.String("id", "", "id to store the board under (defaults to the file name)")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	csvPath := "data/board.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	absPath, err := filepath.Abs(csvPath)
	if err != nil {
		log.Fatalf("Failed to get absolute path: %v", err)
	}

	fmt.Println("=== Quizboard Board Import ===")
	fmt.Printf("CSV file: %s\n", absPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Storage.Driver == config.DriverMemory {
		log.Fatal("Memory storage does not persist; configure sqlite, postgres or redis")
	}

	file, err := os.Open(absPath)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	start := time.Now()
	board, err := importer.ReadBoard(file)
	if err != nil {
		log.Fatalf("Failed to read board: %v", err)
	}
	fmt.Printf("Parsed %d categories x %d rows\n", len(board.Categories), board.Rows())

	repo, err := repository.Open(ctx, cfg.Storage, nil)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}
	defer repo.Close()

	id := *boardID
	if id == "" {
		id = "board-" + filepath.Base(absPath[:len(absPath)-len(filepath.Ext(absPath))])
	}

	if _, err := repo.Load(ctx, id); err == nil {
		fmt.Printf("Warning: replacing existing board %q\n", id)
	}
	if err := repo.Save(ctx, id, state.NewSnapshot(board, nil)); err != nil {
		log.Fatalf("Failed to save board: %v", err)
	}

	fmt.Println("\n=== Import Complete ===")
	fmt.Printf("✓ Stored board %q in %s storage (%s)\n", id, cfg.Storage.Driver, time.Since(start))
	fmt.Printf("\nPlay it with: quizboard -board %s\n", id)
}
