package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"go.hackfix.me/vestibule/app/config"
	actx "go.hackfix.me/vestibule/app/context"
	"go.hackfix.me/vestibule/store"
)

// CLI is the command line interface of Vestibule.
type CLI struct {
	Init    Init    `kong:"cmd,help='Create the Vestibule database.'"`
	Serve   Serve   `kong:"cmd,help='Start the web server.'"`
	User    User    `kong:"cmd,help='Manage users.'"`
	Session Session `kong:"cmd,help='Sign and verify session cookies.'"`
	Whoami  Whoami  `kong:"cmd,help='Ask a running server who a session cookie belongs to.'"`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	// The configuration file is read by the app, not by kong. Flags set
	// explicitly take precedence over it, see ApplyConfig.
	ConfigFile string           `kong:"default='${configFile}',help='Path to the Vestibule configuration file.'"`
	DataDir    string           `kong:"default='${dataDir}',help='Path to the directory where Vestibule data is stored.'"`
	Version    kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong      *kong.Kong
	kctx      *kong.Context
	storeType store.Type
}

// New initializes the command-line interface.
func New(appCtx *actx.Context, configFilePath, dataDir, version string) (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name("vestibule"),
		kong.UsageOnError(),
		kong.DefaultEnvars(strings.TrimSuffix(config.EnvPrefix, "_")),
		kong.NamedMapper("expiration", expirationMapper(appCtx.TimeNow)),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.ValueFormatter(func(value *kong.Value) string {
			if value.Name == "expiration" {
				y, m, d := appCtx.TimeNow().Date()
				exampleExp := time.Date(y, m, d+1, 0, 0, 0, 0, appCtx.TimeNow().Location())
				value.Help = fmt.Sprintf(value.OrigHelp, exampleExp.Format(time.RFC3339))
			}
			return value.Help
		}),
		kong.Vars{
			"configFile": configFilePath,
			"dataDir":    dataDir,
			"version":    version,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	c.kong = kparser

	return c, nil
}

// Execute runs the parsed command. It panics if Parse wasn't called.
func (c *CLI) Execute(appCtx *actx.Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout
	c.kong.Stderr = appCtx.Stderr

	return c.kctx.Run(appCtx) //nolint:wrapcheck // Commands return RuntimeErrors.
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

// Command returns the full path of the executed command.
func (c *CLI) Command() string {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	cmdPath := []string{}
	for _, p := range c.kctx.Path {
		if p.Command != nil {
			cmdPath = append(cmdPath, p.Command.Name)
		}
	}

	return strings.Join(cmdPath, " ")
}

// RequiresInit returns true if the executed command needs the SQLite database
// schema. Users are only stored in SQLite with the sqlite store type.
// ApplyConfig must be called before this method.
func (c *CLI) RequiresInit() bool {
	cmd := c.Command()
	switch {
	case strings.HasPrefix(cmd, "user"), cmd == "session sign", cmd == "serve":
		return usesSQLite(c.storeType)
	default:
		return false
	}
}

func usesSQLite(t store.Type) bool {
	return t == store.TypeSQLite || t == ""
}

// ApplyConfig applies configuration values to the CLI, but only if they weren't
// already set.
func (c *CLI) ApplyConfig(cfg *config.Config) {
	if c.Serve.Address == "" && cfg.Server.Address.Valid {
		c.Serve.Address = cfg.Server.Address.V
	}
	if c.Serve.ErrorLevel == "" && cfg.Server.ErrorLevel.Valid {
		c.Serve.ErrorLevel = string(cfg.Server.ErrorLevel.V)
	}
	if c.Session.Sign.Expiration.IsZero() && cfg.Session.MaxAge.Valid && cfg.Session.MaxAge.V > 0 {
		c.Session.maxAge = cfg.Session.MaxAge.V
	}
	c.storeType = cfg.Store.Type.V
}
