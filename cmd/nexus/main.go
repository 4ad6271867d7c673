package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m4xw311/nexus/agent"
	"github.com/m4xw311/nexus/agent/terminal"
	"github.com/m4xw311/nexus/config"
	"github.com/m4xw311/nexus/goal"
	"github.com/m4xw311/nexus/llm"
	"github.com/m4xw311/nexus/logging"
	"github.com/m4xw311/nexus/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Define flags
	modeFlag := flag.String("m", "", "Execution mode: 'auto' or 'prompt'")
	sessionFlag := flag.String("s", "", "Session name to create or use")
	toolsetFlag := flag.String("t", "", "Toolset to use (defaults to 'default')")
	resumeFlag := flag.String("r", "", "Resume a session by name")
	toolVerbosityFlag := flag.String("tool-verbosity", "", "Tool verbosity level: 'none', 'info', or 'all'")
	goalFlag := flag.String("g", "", "Run a single goal autonomously and exit")
	verboseFlag := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %+v\n", err)
		return 1
	}

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	logger, logCloser, err := logging.NewWithFile(os.Stderr, level, filepath.Join(".nexus", "logs"))
	if err != nil {
		// A broken log directory should not block the session.
		logger = logging.New(os.Stderr, level)
	} else {
		defer logCloser.Close()
	}

	var sess *session.Session
	sessionName := *sessionFlag

	if *resumeFlag != "" {
		// Resume session
		sessionName = *resumeFlag
		sess, err = session.Load(sessionName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resuming session '%s': %+v\n", sessionName, err)
			return 1
		}
		fmt.Printf("Resuming session: %s\n", sessionName)
		// Apply session flags if not explicitly overridden by user
		if *modeFlag == "" && sess.Mode != "" {
			*modeFlag = sess.Mode
		}
		if *toolsetFlag == "" && sess.Toolset != "" {
			*toolsetFlag = sess.Toolset
		}
		if *toolVerbosityFlag == "" && sess.ToolVerbosity != "" {
			*toolVerbosityFlag = sess.ToolVerbosity
		}
	} else {
		// Start new session
		if sessionName == "" {
			sessionName = defaultSessionName()
		}
		sess, err = session.New(sessionName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating session '%s': %+v\n", sessionName, err)
			return 1
		}
		fmt.Printf("Starting new session: %s\n", sessionName)
	}

	if *modeFlag == "" {
		*modeFlag = "prompt"
	}
	if *toolsetFlag == "" {
		*toolsetFlag = "default"
	}
	if *toolVerbosityFlag == "" {
		*toolVerbosityFlag = "none"
	}

	// Update session with current flag values and save
	sess.Mode = *modeFlag
	sess.Toolset = *toolsetFlag
	sess.ToolVerbosity = *toolVerbosityFlag
	if err := sess.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving session '%s': %+v\n", sessionName, err)
		return 1
	}

	// Validate mode
	var opMode agent.Mode
	switch *modeFlag {
	case "auto":
		opMode = agent.ModeAuto
	case "prompt":
		opMode = agent.ModePrompt
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode '%s'. Must be 'auto' or 'prompt'.\n", *modeFlag)
		return 1
	}

	// Initialize LLM Client
	client, err := newLLMClient(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing %s client: %+v\n", cfg.LLMClient, err)
		return 1
	}

	// Validate tool verbosity
	var verbosity agent.ToolVerbosity
	switch *toolVerbosityFlag {
	case "none":
		verbosity = agent.ToolVerbosityNone
	case "info":
		verbosity = agent.ToolVerbosityInfo
	case "all":
		verbosity = agent.ToolVerbosityAll
	default:
		fmt.Fprintf(os.Stderr, "Invalid tool verbosity '%s'. Must be 'none', 'info', or 'all'.\n", *toolVerbosityFlag)
		return 1
	}

	// Create the agent
	nexusAgent, err := agent.New(cfg, sess, *toolsetFlag, opMode, client, verbosity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing agent: %+v\n", err)
		return 1
	}
	defer nexusAgent.Stop()

	events := logging.NewEventSink(logger)

	if *goalFlag != "" {
		return runGoal(context.Background(), nexusAgent, *goalFlag, events)
	}

	// Get initial prompt from remaining arguments
	initialPrompt := strings.Join(flag.Args(), " ")

	// Run the agent in interactive CLI mode
	fmt.Println("Nexus is ready. Type your prompt, or /help for commands.")
	term := terminal.New(nexusAgent)
	term.SetEventSink(events)
	if err := term.Run(context.Background(), initialPrompt); err != nil {
		fmt.Fprintf(os.Stderr, "Agent stopped with an error: %+v\n", err)
		return 1
	}
	return 0
}

// runGoal executes one autonomous goal and reports the outcome. The exit
// code is zero only when the goal succeeded.
func runGoal(ctx context.Context, a *agent.Agent, goalText string, events goal.EventSink) int {
	final, ec, err := a.RunGoal(ctx, goalText, events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Goal run failed: %+v\n", err)
		return 1
	}

	fmt.Printf("Goal finished: %s\n%s\n", final, ec.Summary())
	if final != goal.StateSucceeded {
		return 1
	}
	return 0
}

func newLLMClient(ctx context.Context, cfg *config.Config) (llm.LLMClient, error) {
	switch cfg.LLMClient {
	case "gemini":
		return llm.NewGeminiLLMClient(ctx, cfg.Model, cfg.Temperature)
	case "openai":
		return llm.NewOpenAILLMClient(ctx, cfg.Model, cfg.Temperature)
	case "bedrock":
		return llm.NewBedrockLLMClient(ctx, cfg.Model, cfg.Temperature)
	case "anthropic":
		return llm.NewAnthropicLLMClient(ctx, cfg.Model, cfg.Temperature)
	default:
		return &llm.MockLLMClient{}, nil
	}
}

func defaultSessionName() string {
	wd, err := os.Getwd()
	if err != nil {
		wd = "nexus"
	}
	dirName := filepath.Base(wd)
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return fmt.Sprintf("%s_%s", dirName, timestamp)
}
