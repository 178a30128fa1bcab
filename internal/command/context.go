package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ripplechat/ripple/internal/core"
	"github.com/ripplechat/ripple/internal/logger"
	"github.com/ripplechat/ripple/internal/repo"
)

const metaCurrentUser = "current_user_id"

// Context carries the opened repository and session for a command run.
type Context struct {
	Store    core.Store
	Repo     *repo.Repository
	Session  core.Session
	JSONMode bool
}

// GetContext discovers the store, opens the repository, and loads the
// session user recorded at seed time.
func GetContext(cmd *cobra.Command) (*Context, error) {
	jsonMode, _ := cmd.Flags().GetBool("json")
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logger.SetDebug()
	}

	store, err := core.DiscoverStore("")
	if err != nil {
		return nil, err
	}
	repository, err := repo.Open(store.DBPath, logger.Log)
	if err != nil {
		return nil, err
	}

	userID, err := repository.GetMeta(metaCurrentUser)
	if err != nil {
		_ = repository.Close()
		return nil, err
	}

	return &Context{
		Store:    store,
		Repo:     repository,
		Session:  core.Session{UserID: userID},
		JSONMode: jsonMode,
	}, nil
}

// RequireSession fails when no seeded session user exists yet.
func (c *Context) RequireSession() error {
	if !c.Session.Valid() {
		return fmt.Errorf("no session user. Run 'ripple seed' first")
	}
	return nil
}

// Close releases the repository.
func (c *Context) Close() {
	_ = c.Repo.Close()
}

func writeJSON(cmd *cobra.Command, payload any) error {
	return json.NewEncoder(cmd.OutOrStdout()).Encode(payload)
}
