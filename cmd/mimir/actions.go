package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/mimirsh/mimir/internal/config"
	"github.com/mimirsh/mimir/internal/core"
	"github.com/mimirsh/mimir/internal/ollama"
	"github.com/mimirsh/mimir/internal/picker"
	"github.com/mimirsh/mimir/internal/styles"
)

// runAction handles invocations without a query: configuration inspection and
// the persistent -model/-profile/-temp/-reset-default mutations.
func runAction(ctx context.Context, cfg *config.Config, client *ollama.Client, logger *zap.Logger) error {
	switch {
	case *configFlag:
		return showConfig(cfg)

	case *modelsFlag:
		return listModels(ctx, cfg, client)

	case *selectModelFlag:
		return selectModel(ctx, cfg, client, logger)

	case *favoritesFlag:
		return showFavorites(ctx, cfg, client)

	case *addFavoriteFlag != "":
		if cfg.AddFavorite(*addFavoriteFlag) {
			fmt.Printf("added %s to favorites\n", *addFavoriteFlag)
			return saveConfig(cfg, logger)
		}
		fmt.Printf("%s is already a favorite\n", *addFavoriteFlag)
		return nil

	case *profileFlag != "":
		if err := cfg.ApplyProfile(*profileFlag); err != nil {
			return err
		}
		fmt.Printf("switched to profile %s (model %s, temperature %.1f)\n",
			*profileFlag, cfg.Model, cfg.Temperature)
		return saveConfig(cfg, logger)

	case *modelFlag != "":
		cfg.SetModel(*modelFlag)
		fmt.Printf("model set to %s\n", cfg.Model)
		return saveConfig(cfg, logger)

	case temperatureOverride() != nil:
		cfg.SetTemperature(*temperatureOverride())
		fmt.Printf("temperature set to %.1f\n", cfg.Temperature)
		return saveConfig(cfg, logger)

	case *resetDefaultFlag:
		cfg.ResetDefault()
		fmt.Printf("reset to default model %s\n", config.DefaultModel)
		return saveConfig(cfg, logger)
	}

	fmt.Print(helpText)
	flag.PrintDefaults()
	return nil
}

func saveConfig(cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.Save(core.ConfigFile()); err != nil {
		logger.Error("config save failed", zap.Error(err))
		return err
	}
	return nil
}

func showConfig(cfg *config.Config) error {
	fmt.Println(styles.HEADING("current configuration"))
	source := "user configured"
	if cfg.UseDefaultModel {
		source = "default"
	}
	fmt.Printf("  model:        %s (%s)\n", cfg.Model, source)
	fmt.Printf("  temperature:  %.1f\n", cfg.Temperature)
	fmt.Printf("  ollama url:   %s\n", cfg.OllamaURL)
	fmt.Printf("  stream:       %v\n", cfg.Stream)
	fmt.Printf("  history file: %s\n", cfg.HistoryFile)
	fmt.Printf("  profiles:     %v\n", cfg.ProfileNames())
	fmt.Printf("  config file:  %s\n", core.ConfigFile())
	return nil
}

func listModels(ctx context.Context, cfg *config.Config, client *ollama.Client) error {
	models, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch models: %w", err)
	}

	fmt.Println(styles.HEADING("available models"))
	for _, m := range models {
		marker := ""
		if m.Name == cfg.Model {
			marker = "  (current)"
		}
		fmt.Printf("  %s%s\n", m.Name, marker)
	}
	return nil
}

func showFavorites(ctx context.Context, cfg *config.Config, client *ollama.Client) error {
	if len(cfg.Favorites) == 0 {
		fmt.Println("no favorite models set")
		return nil
	}

	var available []string
	if models, err := client.ListModels(ctx); err == nil {
		for _, m := range models {
			available = append(available, m.Name)
		}
	}

	fmt.Println(styles.HEADING("favorite models"))
	for _, name := range cfg.Favorites {
		status := " "
		if slices.Contains(available, name) {
			status = "+"
		}
		marker := ""
		if name == cfg.Model {
			marker = "  (current)"
		}
		fmt.Printf("  %s %s%s\n", status, name, marker)
	}
	return nil
}

// selectModel runs the interactive menu. The config write happens only after
// a complete, valid selection, so an interrupt mid-menu changes nothing.
func selectModel(ctx context.Context, cfg *config.Config, client *ollama.Client, logger *zap.Logger) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("interactive model selection requires a terminal")
	}

	models, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch models: %w", err)
	}
	if len(models) == 0 {
		return fmt.Errorf("no models available on the inference server")
	}

	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}

	choice, err := picker.Run(names, cfg.Model, cfg.Favorites)
	if err != nil {
		return err
	}

	switch {
	case choice.Cancelled:
		fmt.Println("keeping current model")
		return nil
	case choice.ResetDefault:
		cfg.ResetDefault()
		fmt.Printf("reset to default model %s\n", config.DefaultModel)
	default:
		cfg.SetModel(choice.Model)
		fmt.Printf("model set to %s\n", cfg.Model)
	}

	return saveConfig(cfg, logger)
}
