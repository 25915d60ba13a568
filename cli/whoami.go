package cli

import (
	"encoding/json"
	"fmt"

	actx "go.hackfix.me/vestibule/app/context"
	aerrors "go.hackfix.me/vestibule/app/errors"
	"go.hackfix.me/vestibule/web/client"
)

// Whoami asks a running Vestibule server who a session cookie belongs to.
type Whoami struct {
	Cookie  string `arg:"" optional:"" help:"The session cookie value. If omitted, the request is anonymous."`
	Address string `help:"[host]:port or URL of the server. Defaults to the configured server address."`
	JSON    bool   `help:"Print the raw JSON response."`
}

// Run the whoami command.
func (c *Whoami) Run(appCtx *actx.Context) error {
	addr := c.Address
	if addr == "" {
		addr = appCtx.Config.Server.Address.V
	}

	cl, err := client.New(addr, appCtx.Config.Session.CookieName.V, appCtx.Logger)
	if err != nil {
		return aerrors.NewRuntimeError("failed creating the web client", err, "")
	}

	resp, err := cl.Whoami(appCtx.Ctx, c.Cookie)
	if err != nil {
		return aerrors.NewRuntimeError("failed identifying session", err,
			"make sure the server is running, and the address is correct")
	}

	if c.JSON {
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed encoding response: %w", err)
		}
		fmt.Fprintln(appCtx.Stdout, string(out))
		return nil
	}

	if !resp.Authenticated || resp.User == nil {
		fmt.Fprintln(appCtx.Stdout, "anonymous")
		return nil
	}
	fmt.Fprintf(appCtx.Stdout, "%s (%s)\n", resp.User.Name, resp.User.UUID)

	return nil
}
