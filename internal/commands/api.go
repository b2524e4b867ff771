package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest-cli/internal/completion"
	"github.com/tasknest/tasknest-cli/internal/output"
)

var apiMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// NewAPICmd creates the api command for raw API access.
func NewAPICmd() *cobra.Command {
	var (
		data string
		jq   string
	)

	cmd := &cobra.Command{
		Use:   "api <method> <path>",
		Short: "Raw API access",
		Long: `Make a raw request to any tasknest endpoint. Useful for operations not
covered by dedicated commands.

  tasknest api get /api/groups
  tasknest api post /api/groups --data '{"name":"Семья"}'
  tasknest api get /api/groups/7/tasks --jq '.items[].title'`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			lower := make([]string, len(apiMethods))
			for i, m := range apiMethods {
				lower[i] = strings.ToLower(m)
			}
			return completion.StaticCompletion(lower...)(cmd, args, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			method, err := parseMethod(args[0])
			if err != nil {
				return err
			}
			path := parsePath(args[1])

			var body any
			if data != "" {
				if method == http.MethodGet || method == http.MethodDelete {
					return output.ErrUsage(fmt.Sprintf("--data is not allowed with %s", method))
				}
				var parsed json.RawMessage
				if err := json.Unmarshal([]byte(data), &parsed); err != nil {
					return output.ErrUsageHint(
						"Invalid JSON data",
						fmt.Sprintf("JSON parse error: %v", err),
					)
				}
				body = parsed
			}

			resp, err := app.API.Do(cmd.Context(), method, path, body)
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("%s %s: %s", method, path, apiSummary(resp))
			if jq != "" {
				result, err := applyJQ(cmd.Context(), resp, jq)
				if err != nil {
					return err
				}
				return app.OK(result, summary)
			}
			return app.OK(resp, summary)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringVar(&jq, "jq", "", "jq expression applied to the response")

	return cmd
}

func parseMethod(s string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for _, m := range apiMethods {
		if m == upper {
			return m, nil
		}
	}
	return "", output.ErrUsageHint(
		fmt.Sprintf("Unknown method %q", s),
		"Use one of: get, post, put, patch, delete",
	)
}

// parsePath extracts and normalizes the API path.
// Handles full URLs, relative paths, and auto-adds the /api prefix.
func parsePath(input string) string {
	input = strings.TrimSpace(input)
	if u, err := url.Parse(input); err == nil && u.Scheme != "" && u.Host != "" {
		input = u.RequestURI()
	}

	if !strings.HasPrefix(input, "/") {
		input = "/" + input
	}
	if !strings.HasPrefix(input, "/api/") && input != "/api" {
		input = "/api" + input
	}
	return input
}

// apiSummary generates a summary from the API response.
func apiSummary(data []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return "API response"
	}

	if items, ok := obj["items"].([]any); ok {
		return fmt.Sprintf("%d items", len(items))
	}

	if item, ok := obj["item"].(map[string]any); ok {
		obj = item
	}

	title := ""
	for _, key := range []string{"title", "name", "first_name"} {
		if v, ok := obj[key].(string); ok && v != "" {
			title = v
			break
		}
	}

	if runes := []rune(title); len(runes) > 50 {
		title = string(runes[:47]) + "..."
	}

	if title != "" {
		return title
	}
	if id, ok := obj["id"].(float64); ok {
		return fmt.Sprintf("#%d", int64(id))
	}
	return "API response"
}
