// Command agentpages runs the landing page builder: HTTP server, page
// creation, and one-shot rendering of a stored page to HTML.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	agentpages "github.com/agentpages/agentpages"
	"github.com/agentpages/agentpages/internal/config"
	"github.com/agentpages/agentpages/internal/generate"
	"github.com/agentpages/agentpages/internal/render"
	"github.com/agentpages/agentpages/internal/server"
	"github.com/agentpages/agentpages/internal/store"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "serve":
		err = serveCommand(args)
	case "create":
		err = createCommand(args)
	case "render":
		err = renderCommand(args)
	case "version":
		fmt.Printf("agentpages version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromDir(".")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Server.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newRegistry(cfg *config.Config) (*render.Registry, error) {
	if cfg.Templates.Dir != "" {
		return render.NewWithOverrides(cfg.Templates.Dir)
	}
	return render.New(), nil
}

func serveCommand(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to agentpages.yaml")
	port := fs.Int("port", 0, "override listen port")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := store.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	registry, err := newRegistry(cfg)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	generator := generate.NewClient(cfg.Generator, logger)
	srv := server.New(cfg, st, registry, generator, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func createCommand(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	configPath := fs.String("config", "", "path to agentpages.yaml")
	title := fs.String("title", "", "page title (required)")
	address := fs.String("address", "", "property address")
	price := fs.String("price", "", "listing price")
	bedrooms := fs.String("bedrooms", "", "bedroom count")
	bathrooms := fs.String("bathrooms", "", "bathroom count")
	squareFootage := fs.String("sqft", "", "square footage")
	description := fs.String("description", "", "property description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		return fmt.Errorf("create: -title is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	page := agentpages.NewPage(*title, agentpages.PropertyMeta{
		Title:         *title,
		Address:       *address,
		Price:         *price,
		Bedrooms:      *bedrooms,
		Bathrooms:     *bathrooms,
		SquareFootage: *squareFootage,
		Description:   *description,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.CreatePage(ctx, page); err != nil {
		return fmt.Errorf("create page: %w", err)
	}

	out, _ := json.MarshalIndent(page, "", "  ")
	fmt.Println(string(out))
	return nil
}

func renderCommand(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	configPath := fs.String("config", "", "path to agentpages.yaml")
	output := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("render: expected exactly one page id")
	}
	pageID := fs.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	registry, err := newRegistry(cfg)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	page, err := st.GetPage(ctx, pageID)
	if err != nil {
		return fmt.Errorf("load page: %w", err)
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return registry.RenderPage(out, page.Title, page.Document)
}

func printUsage() {
	fmt.Println("agentpages - real estate landing page builder")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  agentpages serve [-config FILE] [-port N]   Start the HTTP server")
	fmt.Println("  agentpages create -title T [flags]          Create a page")
	fmt.Println("  agentpages render [-o FILE] <page-id>       Render a page to HTML")
	fmt.Println("  agentpages version                          Show version")
	fmt.Println("  agentpages help                             Show this help")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  agentpages serve                            # Serve with agentpages.yaml defaults")
	fmt.Println("  agentpages serve -port 8090                 # Override the listen port")
	fmt.Println("  agentpages create -title \"12 Oak Lane\" -price \"$450,000\" -bedrooms 3")
	fmt.Println("  agentpages render -o page.html 4f2c...      # Render a stored page to a file")
}
