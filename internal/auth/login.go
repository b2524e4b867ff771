package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tasknest/tasknest-cli/internal/api"
	"github.com/tasknest/tasknest-cli/internal/models"
)

// Strategy names reported by Login.
const (
	StrategyInitData    = "init_data"
	StrategyLaunchToken = "launch_token"
	StrategyStoredToken = "stored_token"
)

// ErrNoSession is returned by Login when every strategy failed.
var ErrNoSession = errors.New("no usable session")

// Identity is the subset of the API used to establish a session.
type Identity interface {
	AuthTelegram(ctx context.Context, initData string) (*api.Session, error)
	Me(ctx context.Context) (*api.Session, error)
}

// Credentials are the inputs available to the login strategies.
type Credentials struct {
	InitData    string
	LaunchToken string
}

// Result describes the session Login established.
type Result struct {
	Strategy       string
	User           *models.User
	DefaultGroupID int64
}

// Login tries host initData, then the launch token, then the stored token.
// Failures are logged and the next strategy runs. The launch token is
// persisted before it is verified, matching how a token link behaves.
func Login(ctx context.Context, client Identity, store *Store, creds Credentials, log zerolog.Logger) (*Result, error) {
	if creds.InitData != "" {
		sess, err := client.AuthTelegram(ctx, creds.InitData)
		if err == nil && sess.AccessToken != "" {
			if err := store.SetToken(sess.AccessToken); err != nil {
				return nil, err
			}
			return establish(store, StrategyInitData, sess)
		}
		log.Warn().Err(err).Msg("init data login failed")
	}

	if creds.LaunchToken != "" {
		if err := store.SetToken(creds.LaunchToken); err != nil {
			return nil, err
		}
		sess, err := client.Me(ctx)
		if err == nil {
			return establish(store, StrategyLaunchToken, sess)
		}
		log.Warn().Err(err).Msg("launch token rejected")
	}

	if store.Token() != "" {
		sess, err := client.Me(ctx)
		if err == nil {
			return establish(store, StrategyStoredToken, sess)
		}
		log.Warn().Err(err).Msg("stored token rejected")
		if err := store.ClearToken(); err != nil {
			log.Error().Err(err).Msg("clear stored token")
		}
	}

	return nil, ErrNoSession
}

// establish records the identity. The user sync runs first so that a
// default group left by another account never survives the switch; the
// server's default then always replaces the stored one.
func establish(store *Store, strategy string, sess *api.Session) (*Result, error) {
	if err := store.SyncUserContext(sess.User); err != nil {
		return nil, err
	}
	if err := store.SetDefaultGroupID(sess.DefaultGroupID, true); err != nil {
		return nil, err
	}
	return &Result{
		Strategy:       strategy,
		User:           sess.User,
		DefaultGroupID: store.DefaultGroupID(),
	}, nil
}
