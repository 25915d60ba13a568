package cli

import (
	"fmt"

	actx "go.hackfix.me/vestibule/app/context"
	aerrors "go.hackfix.me/vestibule/app/errors"
)

// The Init command creates the Vestibule SQLite database schema. It's not
// needed when users are stored in Postgres, whose schema is migrated on
// startup by the serve command.
type Init struct{}

// Run the init command.
func (c *Init) Run(appCtx *actx.Context) error {
	if appCtx.VersionInit != "" {
		return aerrors.NewRuntimeError(
			fmt.Sprintf("Vestibule is already initialized with version %s", appCtx.VersionInit), nil, "")
	}

	err := appCtx.DB.Init(appCtx.Version.Semantic, appCtx.Logger)
	if err != nil {
		return aerrors.NewRuntimeError("failed initializing database", err, "")
	}

	return nil
}
