package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	// Packages
	kong "github.com/alecthomas/kong"
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
	session "github.com/mutablelogic/go-mcp/pkg/mcp/session"
	syncclient "github.com/mutablelogic/go-mcp/pkg/mcp/syncclient"
	stdio "github.com/mutablelogic/go-mcp/pkg/mcp/transport/stdio"
	version "github.com/mutablelogic/go-mcp/pkg/version"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type CLI struct {
	Globals

	// Commands
	Ping      PingCommand      `cmd:"" help:"Ping the MCP server"`
	Tools     ToolsCommand     `cmd:"" help:"List available tools"`
	Do        DoCommand        `cmd:"" help:"Call a tool by name"`
	Resources ResourcesCommand `cmd:"" help:"List available resources"`
	Read      ReadCommand      `cmd:"" help:"Read a resource by uri"`
	Prompts   PromptsCommand   `cmd:"" help:"List available prompts"`
	Prompt    PromptCommand    `cmd:"" help:"Get a prompt by name"`
	Roots     RootsCommand     `cmd:"" help:"List the client's own roots"`
}

type Globals struct {
	Command []string         `arg:"" help:"Server command and arguments to run over stdio (e.g. 'mcp-server --flag')"`
	Config  string           `name:"config" help:"Path to a YAML config file (clientName, clientVersion, requestTimeout, roots)" optional:""`
	Debug   bool             `name:"debug" help:"Enable debug output" default:"false"`
	Version kong.VersionFlag `name:"version" help:"Print version and exit"`

	// Private
	ctx    context.Context
	cancel context.CancelFunc
	client *syncclient.Client
}

type PingCommand struct{}

type ToolsCommand struct{}

type DoCommand struct {
	Name string   `arg:"" help:"Tool name"`
	Args []string `arg:"" help:"Tool arguments as key=value pairs" optional:""`
}

type ResourcesCommand struct{}

type ReadCommand struct {
	URI string `arg:"" help:"Resource uri"`
}

type PromptsCommand struct{}

type PromptCommand struct {
	Name string   `arg:"" help:"Prompt name"`
	Args []string `arg:"" help:"Prompt arguments as key=value pairs" optional:""`
}

type RootsCommand struct{}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func main() {
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name("mcp-session"),
		kong.Description("MCP (Model Context Protocol) client session runner"),
		kong.Vars{
			"version": string(version.JSON("mcp-session")),
		},
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	cli.ctx, cli.cancel = signal.NotifyContext(context.Background(), os.Interrupt)
	defer cli.cancel()

	cmd.FatalIfErrorf(cmd.Run(&cli.Globals))
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (c *PingCommand) Run(g *Globals) error {
	if err := g.connect(); err != nil {
		return err
	}
	defer g.client.Close()

	if err := g.client.Ping(g.ctx); err != nil {
		return err
	}
	fmt.Println("OK")

	if info := g.client.ServerInfo(); info != nil {
		caps := g.client.Capabilities()
		fmt.Printf("Server: %s %s\n", info.Name, info.Version)
		fmt.Printf("Capabilities: tools=%v prompts=%v resources=%v logging=%v\n",
			caps.HasTools(), caps.HasPrompts(), caps.HasResources(), caps.HasLogging())
	}
	return nil
}

func (c *ToolsCommand) Run(g *Globals) error {
	if err := g.connect(); err != nil {
		return err
	}
	defer g.client.Close()

	tools, err := g.client.ListTools(g.ctx)
	if err != nil {
		return err
	}
	for i, tool := range tools {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s\n", tool.Name)
		if tool.Description != "" {
			fmt.Printf("  %s\n", tool.Description)
		}
		if len(tool.InputSchema) > 0 {
			var pretty map[string]any
			if err := json.Unmarshal(tool.InputSchema, &pretty); err == nil {
				data, _ := json.MarshalIndent(pretty, "  ", "  ")
				fmt.Printf("  %s\n", string(data))
			}
		}
	}
	fmt.Printf("\n%d tools\n", len(tools))
	return nil
}

func (c *DoCommand) Run(g *Globals) error {
	if err := g.connect(); err != nil {
		return err
	}
	defer g.client.Close()

	args, err := parseArgsValue(c.Args)
	if err != nil {
		return err
	}

	result, err := g.client.CallTool(g.ctx, c.Name, args)
	if err != nil {
		return err
	}

	if result.IsError {
		fmt.Fprintln(os.Stderr, "Tool returned an error")
	}
	for _, content := range result.Content {
		switch content.Type {
		case "text":
			fmt.Println(content.Text)
		default:
			fmt.Printf("[%s] %s\n", content.Type, content.MimeType)
		}
	}
	return nil
}

func (c *ResourcesCommand) Run(g *Globals) error {
	if err := g.connect(); err != nil {
		return err
	}
	defer g.client.Close()

	resources, err := g.client.ListResources(g.ctx)
	if err != nil {
		return err
	}
	for _, r := range resources {
		fmt.Printf("%-30s %s\n", r.URI, r.Name)
	}
	fmt.Printf("\n%d resources\n", len(resources))
	return nil
}

func (c *ReadCommand) Run(g *Globals) error {
	if err := g.connect(); err != nil {
		return err
	}
	defer g.client.Close()

	result, err := g.client.ReadResource(g.ctx, c.URI)
	if err != nil {
		return err
	}
	for _, content := range result.Contents {
		if content.Text != "" {
			fmt.Println(content.Text)
		} else {
			fmt.Printf("[%s] %d bytes\n", content.MimeType, len(content.Blob))
		}
	}
	return nil
}

func (c *PromptsCommand) Run(g *Globals) error {
	if err := g.connect(); err != nil {
		return err
	}
	defer g.client.Close()

	prompts, err := g.client.ListPrompts(g.ctx)
	if err != nil {
		return err
	}
	for _, p := range prompts {
		fmt.Printf("%-30s %s\n", p.Name, p.Description)
		for _, arg := range p.Arguments {
			req := ""
			if arg.Required {
				req = " (required)"
			}
			fmt.Printf("  %-28s %s%s\n", arg.Name, arg.Description, req)
		}
	}
	fmt.Printf("\n%d prompts\n", len(prompts))
	return nil
}

func (c *PromptCommand) Run(g *Globals) error {
	if err := g.connect(); err != nil {
		return err
	}
	defer g.client.Close()

	args := make(map[string]string)
	for _, kv := range c.Args {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("argument must be key=value, got %q", kv)
		}
		args[parts[0]] = parts[1]
	}

	result, err := g.client.GetPrompt(g.ctx, c.Name, args)
	if err != nil {
		return err
	}
	if result.Description != "" {
		fmt.Println(result.Description)
		fmt.Println()
	}
	for i, msg := range result.Messages {
		fmt.Printf("[%d] %s (%s):\n", i, msg.Role, msg.Content.Type)
		if msg.Content.Text != "" {
			fmt.Println(msg.Content.Text)
		}
		fmt.Println()
	}
	return nil
}

func (c *RootsCommand) Run(g *Globals) error {
	if err := g.connect(); err != nil {
		return err
	}
	defer g.client.Close()

	// Roots are only available once the session has started.
	if err := g.client.Ping(g.ctx); err != nil {
		return err
	}
	roots, err := g.client.Roots()
	if err != nil {
		return err
	}
	for _, r := range roots {
		fmt.Printf("%-30s %s\n", r.URI, r.Name)
	}
	fmt.Printf("\n%d roots\n", len(roots))
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// connect spawns the configured server command over the stdio transport and
// stores the resulting sync client on Globals.
func (g *Globals) connect() error {
	if len(g.Command) == 0 {
		return fmt.Errorf("no server command given")
	}

	cfg, err := loadConfig(g.Config)
	if err != nil {
		return err
	}

	clientInfo := schema.ClientInfo{Name: "mcp-session", Version: "0.1.0"}
	if cfg.ClientName != "" {
		clientInfo.Name = cfg.ClientName
	}
	if cfg.ClientVersion != "" {
		clientInfo.Version = cfg.ClientVersion
	}

	tr := stdio.New(g.Command[0], g.Command[1:]...)

	opts := []session.Opt{
		session.WithTransport(tr),
		session.WithClientInfo(clientInfo),
	}
	timeout, err := cfg.requestTimeout()
	if err != nil {
		return fmt.Errorf("mcp-session: invalid requestTimeout in config: %w", err)
	}
	if timeout > 0 {
		opts = append(opts, session.WithRequestTimeout(timeout))
	}
	for _, root := range cfg.Roots {
		opts = append(opts, session.WithRoot(root))
	}
	if g.Debug {
		opts = append(opts, session.WithLoggingConsumer(func(msg schema.LoggingMessageParams) {
			fmt.Fprintf(os.Stderr, "[%s] %s: %v\n", msg.Level, msg.Logger, msg.Data)
		}))
	}

	g.client = syncclient.New(opts...)
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// HELPERS

// parseArgsValue converts key=value pairs to a native Go map, trying JSON
// decoding per value first (for numbers, booleans, objects) and falling
// back to the raw string.
func parseArgsValue(args []string) (map[string]any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	m := make(map[string]any, len(args))
	for _, kv := range args {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("argument must be key=value, got %q", kv)
		}
		var v any
		if err := json.Unmarshal([]byte(parts[1]), &v); err != nil {
			v = parts[1]
		}
		m[parts[0]] = v
	}
	return m, nil
}
