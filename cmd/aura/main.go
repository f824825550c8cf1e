// Package main provides the Aura assistant shell: an embedded browser driven
// by chat or voice, with page simplification, guided form filling, and
// planned command execution for public-service websites.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/darkaengl/aura-sub000/pkg/assistant"
	"github.com/darkaengl/aura-sub000/pkg/browser"
	"github.com/darkaengl/aura-sub000/pkg/command"
	appconfig "github.com/darkaengl/aura-sub000/pkg/config"
	"github.com/darkaengl/aura-sub000/pkg/llm"
	"github.com/darkaengl/aura-sub000/pkg/llm/fallback"
	"github.com/darkaengl/aura-sub000/pkg/llm/openai"
	"github.com/darkaengl/aura-sub000/pkg/logging"
	"github.com/darkaengl/aura-sub000/pkg/pdf"
	"github.com/darkaengl/aura-sub000/pkg/security/navguard"
	"github.com/darkaengl/aura-sub000/pkg/simplify"
	"github.com/darkaengl/aura-sub000/pkg/transcribe/deepgram"
	"github.com/darkaengl/aura-sub000/pkg/types"
	"github.com/darkaengl/aura-sub000/pkg/ui"
	"github.com/darkaengl/aura-sub000/pkg/voice"
)

const (
	version      = "0.1.0"
	defaultModel = "gpt-4o-mini"
)

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	ConfigFile   string
	HomeURL      string
	SimplifyFile string
	Complexity   string
	AudioSource  string
	Headless     bool
	TUI          bool
	ShowVersion  bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("Aura v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, config); err != nil {
		cancel()
		log.Printf("Execution failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags.
func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.APIKey, "api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI-compatible API key")
	flag.StringVar(&config.BaseURL, "base-url", os.Getenv("OPENAI_BASE_URL"), "OpenAI-compatible API base URL")
	flag.StringVar(&config.Model, "model", "", "Primary LLM model (overrides config file)")
	flag.StringVar(&config.ConfigFile, "config", "", "Path to configuration file (default ~/.aura/config.json)")
	flag.StringVar(&config.HomeURL, "home", "", "Page to open on startup")
	flag.StringVar(&config.SimplifyFile, "simplify", "", "Simplify a local text or PDF file and exit")
	flag.StringVar(&config.Complexity, "complexity", "moderate", "Simplification level: simple, moderate, or advanced")
	flag.StringVar(&config.AudioSource, "audio-source", os.Getenv("AURA_AUDIO_SOURCE"), "Path to a 16kHz mono s16le PCM file or FIFO for voice mode")
	flag.BoolVar(&config.Headless, "headless", false, "Run the browser without a visible window")
	flag.BoolVar(&config.TUI, "tui", false, "Use the full-screen chat shell instead of the line REPL")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Aura - Voice and Chat Assistant for Public-Service Websites\n\n")
		fmt.Fprintf(os.Stderr, "Usage: aura [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Interactive session starting from a services portal\n")
		fmt.Fprintf(os.Stderr, "  aura -home https://www.usa.gov\n\n")
		fmt.Fprintf(os.Stderr, "  # Simplify a PDF notice without opening the browser\n")
		fmt.Fprintf(os.Stderr, "  aura -simplify notice.pdf -complexity simple\n\n")
		fmt.Fprintf(os.Stderr, "  # Voice mode fed by an external capture tool\n")
		fmt.Fprintf(os.Stderr, "  mkfifo /tmp/aura.pcm && arecord -f S16_LE -r 16000 -c 1 > /tmp/aura.pcm &\n")
		fmt.Fprintf(os.Stderr, "  aura -audio-source /tmp/aura.pcm\n\n")
		fmt.Fprintf(os.Stderr, "Session commands: /simplify, /open URL, /voice, /stop, /cancel, /quit\n")
	}

	flag.Parse()
	return config
}

// run wires the assistant together and drives the session.
func run(ctx context.Context, cliConfig *CLIConfig) error {
	logger, err := logging.NewLogger("aura")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	store, err := appconfig.NewFileStore(cliConfig.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to open configuration: %w", err)
	}

	llmSection := appconfig.NewLLMSection()
	voiceSection := appconfig.NewVoiceSection()
	browserSection := appconfig.NewBrowserSection()

	manager := appconfig.NewManager(store)
	for _, section := range []appconfig.Section{llmSection, voiceSection, browserSection} {
		if regErr := manager.RegisterSection(section); regErr != nil {
			return fmt.Errorf("failed to register config section: %w", regErr)
		}
	}
	if loadErr := manager.LoadAll(); loadErr != nil {
		return fmt.Errorf("invalid configuration: %w", loadErr)
	}

	// CLI arguments override the config file.
	if cliConfig.Model != "" {
		llmSection.PrimaryModel = cliConfig.Model
	}
	if llmSection.PrimaryModel == "" {
		llmSection.PrimaryModel = defaultModel
	}
	if cliConfig.BaseURL != "" {
		llmSection.PrimaryBaseURL = cliConfig.BaseURL
	}

	wrapper, err := buildWrapper(cliConfig.APIKey, llmSection)
	if err != nil {
		return err
	}

	sink, err := logging.NewSink("", logger)
	if err != nil {
		return fmt.Errorf("failed to create data sink: %w", err)
	}

	// Simplify-a-file mode does not need the browser at all.
	if cliConfig.SimplifyFile != "" {
		return simplifyFile(ctx, cliConfig, wrapper, sink, logger)
	}

	sandbox, err := browser.Launch(browser.LaunchOptions{
		Headless: cliConfig.Headless || browserSection.Headless,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	defer sandbox.Close()

	guard, err := navguard.New(browserSection.AllowedURLPatterns, browserSection.DeniedURLPatterns)
	if err != nil {
		return fmt.Errorf("invalid navigation policy: %w", err)
	}
	guarded := navguard.Wrap(sandbox, guard)

	var events types.EventSink
	var eventCh chan *types.Event
	if cliConfig.TUI {
		// The shell renders events; drop rather than block if it falls behind.
		eventCh = make(chan *types.Event, 64)
		events = types.EventSinkFunc(func(event *types.Event) {
			select {
			case eventCh <- event:
			default:
			}
		})
	} else {
		events = types.EventSinkFunc(printEvent)
	}

	a := assistant.New(guarded, wrapper,
		assistant.WithEvents(events),
		assistant.WithResultSink(sink),
		assistant.WithLogger(logger),
	)

	if browserSection.SynonymsFile != "" {
		table, synErr := command.LoadSynonyms(browserSection.SynonymsFile)
		if synErr != nil {
			logger.Warnf("failed to load synonyms from %s: %v", browserSection.SynonymsFile, synErr)
		} else {
			a.SetSynonyms(table)
		}
	}

	controller, voiceErr := buildVoiceController(cliConfig, voiceSection, a, events, logger)
	if voiceErr != nil {
		logger.Warnf("voice mode unavailable: %v", voiceErr)
	}
	defer func() {
		if controller != nil {
			controller.StopContinuousMode()
		}
	}()

	home := cliConfig.HomeURL
	if home == "" {
		home = browserSection.HomeURL
	}
	if home != "" {
		if navErr := guarded.Navigate(ctx, home); navErr != nil {
			fmt.Printf("Could not open %s: %v\n", home, navErr)
		}
	}

	if cliConfig.TUI {
		shell := ui.New(a.HandleChatMessage, eventCh)
		return shell.Run(ctx)
	}
	return repl(ctx, a, controller, guarded)
}

// buildWrapper constructs the provider fallback wrapper: a remote primary
// with per-feature model overrides, and an optional local secondary for the
// single retry after a primary failure.
func buildWrapper(apiKey string, section *appconfig.LLMSection) (*fallback.Wrapper, error) {
	providerOpts := []openai.ProviderOption{
		openai.WithModel(section.PrimaryModel),
	}
	if section.PrimaryBaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(section.PrimaryBaseURL))
	}

	primary, err := openai.NewProvider(apiKey, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	featureProvider := func(feature string) llm.Provider {
		model := section.ModelFor(feature)
		if model == primary.GetModel() {
			return primary
		}
		return primary.CloneWithModel(model)
	}

	opts := []fallback.Option{
		fallback.WithFeatureProvider(fallback.FeatureSimplify, featureProvider("simplify")),
		fallback.WithFeatureProvider(fallback.FeatureClassify, featureProvider("classify")),
		fallback.WithFeatureProvider(fallback.FeaturePlan, featureProvider("plan")),
		fallback.WithFeatureProvider(fallback.FeatureSuggest, featureProvider("suggest")),
	}

	if section.SecondaryModel != "" {
		// Local OpenAI-compatible servers accept any key.
		secondary, secErr := openai.NewProvider("local",
			openai.WithModel(section.SecondaryModel),
			openai.WithBaseURL(section.SecondaryBaseURL),
		)
		if secErr != nil {
			return nil, fmt.Errorf("failed to create secondary provider: %w", secErr)
		}
		opts = append(opts, fallback.WithFallback(fallback.ToSecondary(secondary)))
	}

	return fallback.New(primary, opts...), nil
}

// buildVoiceController wires the microphone, transcriber, and routing for
// continuous voice mode. Voice is optional; a missing audio source or
// Deepgram key just disables it.
func buildVoiceController(cliConfig *CLIConfig, section *appconfig.VoiceSection, a *assistant.Assistant, events types.EventSink, logger *logging.Logger) (*voice.Controller, error) {
	if cliConfig.AudioSource == "" {
		return nil, fmt.Errorf("no audio source configured (set -audio-source or AURA_AUDIO_SOURCE)")
	}

	transcriber, err := deepgram.New("",
		deepgram.WithModel(section.TranscriptionModel),
		deepgram.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	route := func(ctx context.Context, text string) {
		a.HandleInput(ctx, types.NewVoiceInput(text))
	}

	controller := voice.NewController(
		newFileMicrophone(cliConfig.AudioSource),
		transcriber,
		a.Forms(),
		route,
		a.Agree,
		voice.WithSilenceThreshold(section.SilenceThresholdDB),
		voice.WithTimings(voice.Timings{
			SilenceDelay: time.Duration(section.SilenceDelayMS) * time.Millisecond,
			MaxDuration:  time.Duration(section.MaxRecordingMS) * time.Millisecond,
		}),
		voice.WithEvents(events),
		voice.WithLogger(logger),
	)
	return controller, nil
}

// simplifyFile reads a local text or PDF file, simplifies it, and prints the
// result. Used by the -simplify flag.
func simplifyFile(ctx context.Context, cliConfig *CLIConfig, wrapper *fallback.Wrapper, sink *logging.Sink, logger *logging.Logger) error {
	raw, err := os.ReadFile(cliConfig.SimplifyFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cliConfig.SimplifyFile, err)
	}

	data := simplify.TextData{
		Title: filepath.Base(cliConfig.SimplifyFile),
	}
	if strings.EqualFold(filepath.Ext(cliConfig.SimplifyFile), ".pdf") {
		doc, pdfErr := pdf.ExtractText(raw)
		if pdfErr != nil {
			return fmt.Errorf("failed to extract PDF text: %w", pdfErr)
		}
		data.Text = doc.Text
		data.WordCount = doc.WordCount
	} else {
		data.Text = string(raw)
	}

	a := assistant.New(noopSandbox{}, wrapper,
		assistant.WithEvents(types.EventSinkFunc(printEvent)),
		assistant.WithResultSink(sink),
		assistant.WithLogger(logger),
	)

	complexity := simplify.NormalizeComplexity(simplify.Complexity(cliConfig.Complexity))
	result, err := a.Simplify(ctx, data, complexity)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	fmt.Printf("\n%s\n\n", result.SimplifiedText)
	fmt.Println(reductionSummary(result))
	return nil
}

// reductionSummary describes how much shorter the simplified text is.
func reductionSummary(result *simplify.Result) string {
	return fmt.Sprintf("(%.0f%% shorter: %d words down from %d)",
		result.WordReductionPercent,
		result.Metadata.SimplifiedWordCount,
		result.Metadata.OriginalWordCount,
	)
}

// repl reads lines from stdin until EOF or /quit. Slash commands control the
// session; everything else goes to the assistant.
func repl(ctx context.Context, a *assistant.Assistant, controller *voice.Controller, sandbox browser.Sandbox) error {
	fmt.Println("Aura is ready. Type a question or request, or /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit" || line == "/exit":
			return nil

		case line == "/simplify" || strings.HasPrefix(line, "/simplify "):
			level := strings.TrimSpace(strings.TrimPrefix(line, "/simplify"))
			complexity := simplify.NormalizeComplexity(simplify.Complexity(level))
			if result, err := a.SimplifyPage(ctx, complexity); err == nil && result != nil {
				fmt.Printf("\n%s\n\n", result.SimplifiedText)
			}

		case strings.HasPrefix(line, "/open "):
			url := strings.TrimSpace(strings.TrimPrefix(line, "/open "))
			if err := sandbox.Navigate(ctx, url); err != nil {
				fmt.Printf("Could not open %s: %v\n", url, err)
			}

		case line == "/voice":
			if controller == nil {
				fmt.Println("Voice mode is unavailable; start aura with -audio-source and a DEEPGRAM_API_KEY.")
				continue
			}
			if err := controller.StartContinuousMode(ctx); err != nil {
				fmt.Printf("Could not start voice mode: %v\n", err)
			}

		case line == "/stop":
			if controller != nil {
				controller.StopContinuousMode()
			}

		case line == "/cancel":
			a.HandleInput(ctx, types.NewCancelInput())

		default:
			a.HandleInput(ctx, types.NewUserInput(line))
		}
	}
	return scanner.Err()
}

// printEvent renders one assistant event on the terminal.
func printEvent(event *types.Event) {
	switch event.Type {
	case types.EventTypeChat:
		fmt.Printf("\naura> %s\n", event.Content)
	case types.EventTypeCommandStep:
		fmt.Printf("  [%d/%d] %s\n", event.Step, event.Total, event.Content)
	case types.EventTypeSimplifyProgress:
		fmt.Printf("  simplifying %d/%d...\n", event.Step, event.Total)
	case types.EventTypeFormPrompt:
		fmt.Printf("\nform> %s\n", event.Content)
	case types.EventTypeSuggestion:
		fmt.Printf("\nnext> %s\n", event.Content)
	case types.EventTypeError:
		fmt.Printf("\nerror: %v\n", event.Error)
	default:
		fmt.Printf("  %s\n", event.Content)
	}
}

// noopSandbox satisfies the sandbox dependency for browserless modes.
type noopSandbox struct{}

func (noopSandbox) Run(ctx context.Context, scriptSource string) (json.RawMessage, error) {
	return nil, fmt.Errorf("no browser in this mode")
}

func (noopSandbox) Navigate(ctx context.Context, url string) error {
	return fmt.Errorf("no browser in this mode")
}

func (noopSandbox) CurrentURL() string { return "" }
