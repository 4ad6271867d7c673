// Package agent provides the core agent functionality for the Nexus system.
//
// This package contains the common code shared between interaction modes. It
// defines the core Agent type and the processing logic for handling user
// input, LLM interactions, tool executions, and autonomous goal runs.
//
// # Architecture
//
// The agent package is organized into two main components:
//
//   - Core agent (this package): Contains the shared Agent type and processing logic
//   - Terminal subpackage (agent/terminal): Implements the CLI interaction mode
//
// # Core Functionality
//
// The Agent type provides:
//
//   - Configuration management for LLM clients and toolsets
//   - Session management for conversation history
//   - Tool discovery and sandboxed execution
//   - Processing loop for LLM interactions and tool calls
//   - One-shot autonomous goal execution via the goal package
//   - Callback-based architecture for different interaction modes
//
// # Usage
//
// To create and use an agent:
//
//	// Create an agent with configuration
//	agent, err := agent.New(cfg, session, toolset, mode, llmClient, verbosity)
//	if err != nil {
//	    // handle error
//	}
//
//	// Define callbacks for your interaction mode
//	callbacks := agent.ProcessCallbacks{
//	    OnAssistantMessage: func(message string) {
//	        // Handle assistant responses
//	    },
//	    OnToolCall: func(toolCall session.ToolCall) {
//	        // Handle tool execution requests
//	    },
//	    OnToolResult: func(toolCall session.ToolCall, result string) {
//	        // Handle tool execution results
//	    },
//	    ShouldExecuteTool: func(toolCall session.ToolCall) bool {
//	        // Determine if a tool should be executed (for prompt mode)
//	        return true
//	    },
//	    OnWarning: func(warning string) {
//	        // Handle non-fatal warnings
//	    },
//	}
//
//	// Process user input
//	err = agent.ProcessUserInput(ctx, "user message", callbacks)
//
// # Modes
//
// The agent supports two operation modes:
//
//   - ModeAuto: Tools are executed automatically without confirmation
//   - ModePrompt: Tool execution requires confirmation (handled via callbacks)
//
// # Tool Verbosity
//
// Tool execution verbosity can be configured at three levels:
//
//   - ToolVerbosityNone: No tool execution details are shown
//   - ToolVerbosityInfo: Basic tool execution information is shown
//   - ToolVerbosityAll: Detailed tool execution information including arguments and results
//
// # Goal Runs
//
// RunGoal hands a goal statement to the goal package: a plan is requested
// from the model, executed step by step inside the filesystem sandbox, and
// revised once if execution runs aground. The run's progress is published to
// an event sink and the outcome is appended to the conversation session.
package agent
