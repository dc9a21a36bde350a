package main

import (
	"os"

	"github.com/brendan.keane/lurl/internal/cli"
	"github.com/brendan.keane/lurl/internal/config"
	"github.com/brendan.keane/lurl/internal/errors"
	"github.com/brendan.keane/lurl/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PresentError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lurl [url|path]",
		Short: "Invoke AWS Lambda functions like HTTP endpoints",
		Long: `lurl is a curl-like client for AWS Lambda functions that sit behind API Gateway.
It wraps the request in an API Gateway proxy event, invokes the function directly
and prints the function's response as if it came from an HTTP server.

Targets are lambda:// URLs:
  lambda://my-function/path            unqualified ($LATEST)
  lambda://my-function:prod/path       alias or version
  lambda://my-function.staging.7/path  name.stage.version

Relative paths are resolved against --server (or LURL_SERVER).`,
		Example: `  lurl lambda://users-api/users
  lurl -X POST -d '{"name":"Ada"}' lambda://users-api:prod/users
  lurl --server lambda://users-api -p limit=10 -i /users`,
		Args:              cobra.MaximumNArgs(1),
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return cli.NewHTTPHandler(*zerolog.Ctx(cmd.Context())).Execute(cmd, args)
		},
	}

	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.RegisterFlagCompletionFunc("request", methodCompletion)
	rootCmd.RegisterFlagCompletionFunc("backend", backendCompletion)

	rootCmd.AddCommand(newMCPCmd(), generateCompletionCmd())

	return rootCmd
}

// setup loads configuration once for every command and stores it, with the
// logger it selects, in the command context.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	log := logger.SetupFromFlags(cfg.Verbose, cfg.Debug)
	log.Debug().
		Str("command", cmd.Name()).
		Str("backend", cfg.Backend).
		Str("region", cfg.Region).
		Str("config_file", cfg.ConfigFile).
		Msg("configuration loaded")

	ctx := config.WithConfig(cmd.Context(), cfg)
	cmd.SetContext(log.WithContext(ctx))
	return nil
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp [lambda-prefix]",
		Short: "Serve function invocation as an MCP tool over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing an "invoke" tool.

An optional lambda:// prefix confines the tool to targets under it; relative
paths given to the tool are resolved against the prefix. -X limits the
methods the tool may use. --metrics-addr serves Prometheus metrics for the
invocations the server makes.`,
		Example: `  lurl mcp
  lurl mcp lambda://users-api:prod -X GET
  lurl mcp --mcp-desc "User service" --metrics-addr :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.NewMCPHandler(*zerolog.Ctx(cmd.Context()), version).Execute(cmd, args)
		},
	}
}

func methodCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}, cobra.ShellCompDirectiveNoFileComp
}

func backendCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"signed\tSigV4-signed POST to the Lambda Invoke API",
		"sdk\tAWS SDK Lambda client with retries",
	}, cobra.ShellCompDirectiveNoFileComp
}

func generateCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `To load completions:

Bash:

  $ source <(lurl completion bash)

Zsh:

  $ source <(lurl completion zsh)

Fish:

  $ lurl completion fish | source

PowerShell:

  PS> lurl completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		PersistentPreRunE:     func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
