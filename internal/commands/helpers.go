package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest-cli/internal/appctx"
	"github.com/tasknest/tasknest-cli/internal/names"
	"github.com/tasknest/tasknest-cli/internal/output"
)

// requireApp returns the app attached by the root command.
func requireApp(cmd *cobra.Command) (*appctx.App, error) {
	app := appctx.FromContext(cmd.Context())
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}

// requireLogin fails with an auth error when no token is stored.
func requireLogin(app *appctx.App) error {
	if app.Session.Token() == "" {
		return &output.Error{
			Code:    output.CodeAuth,
			Message: "Not logged in",
			Hint:    "Run: tasknest auth login",
		}
	}
	return nil
}

// applyJQ runs a jq expression over data and returns the single result, or
// a slice when the expression yields several values.
func applyJQ(ctx context.Context, data any, expr string) (any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, output.ErrUsageHint("Invalid jq expression", err.Error())
	}

	input, err := toJQInput(data)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := query.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, output.ErrUsageHint("jq evaluation failed", err.Error())
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	}
	return results, nil
}

// toJQInput converts typed values to the generic maps and slices gojq walks.
func toJQInput(data any) (any, error) {
	var raw []byte
	switch v := data.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encoding jq input: %w", err)
		}
		raw = b
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding jq input: %w", err)
	}
	return out, nil
}

// resolveGroupFlag turns a --group value into a group ID. An empty value
// means the selected group, falling back to the personal group.
func resolveGroupFlag(ctx context.Context, app *appctx.App, value string) (int64, string, error) {
	if value == "" {
		if id := app.Session.SelectedGroupID(); id != 0 {
			return id, strconv.FormatInt(id, 10), nil
		}
		id := app.Session.DefaultGroupID()
		return id, "personal", nil
	}

	resolver := names.NewResolver(app.API)
	group, err := resolver.ResolveGroup(ctx, value, app.Session.DefaultGroupID())
	if err != nil {
		return 0, "", err
	}
	return group.ID, group.Label(), nil
}

// isNumeric checks if a string contains only digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
