package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tasknest/tasknest-cli/internal/models"
)

type listEnvelope[T any] struct {
	Items []T `json:"items"`
}

type itemEnvelope[T any] struct {
	Item T `json:"item"`
}

type idEnvelope struct {
	ID int64 `json:"id"`
}

// Session is the identity payload of /api/auth/telegram and /api/me.
type Session struct {
	AccessToken    string       `json:"access_token,omitempty"`
	User           *models.User `json:"user,omitempty"`
	DefaultGroupID int64        `json:"default_group_id"`
}

// GroupFinance is a shared group's ledger with its running balance.
type GroupFinance struct {
	Balance int64                     `json:"balance"`
	Items   []models.GroupFinanceItem `json:"items"`
}

// NewTask is the body of POST /api/groups/:id/tasks.
type NewTask struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Deadline      *string `json:"deadline"`
	ResponsibleID int64   `json:"responsible_id"`
	AssigneeIDs   []int64 `json:"assignee_ids"`
}

// TaskUpdate is the body of PATCH /api/tasks/:id.
type TaskUpdate struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Deadline    *string `json:"deadline"`
	Done        bool    `json:"done"`
	AssigneeIDs []int64 `json:"assignee_ids"`
}

// NewGroupFinance is the body of POST /api/groups/:id/finance.
type NewGroupFinance struct {
	Kind        string `json:"kind"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	CategoryID  *int64 `json:"category_id"`
	MethodID    *int64 `json:"method_id"`
}

// NewFinance is the body of POST /api/finance. Amount is signed.
type NewFinance struct {
	Title  string `json:"title"`
	Amount int64  `json:"amount"`
}

// -- Auth

// AuthTelegram exchanges host-signed initData for an access token.
func (c *Client) AuthTelegram(ctx context.Context, initData string) (*Session, error) {
	var s Session
	body := map[string]string{"initData": initData}
	if err := c.Request(ctx, http.MethodPost, "/api/auth/telegram", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Me validates the current token and returns the identity.
func (c *Client) Me(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.Request(ctx, http.MethodGet, "/api/me", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// -- Groups

// Groups lists the groups the user belongs to.
func (c *Client) Groups(ctx context.Context) ([]models.Group, error) {
	return getList[models.Group](ctx, c, "/api/groups")
}

// CreateGroup creates a group owned by the user and returns its id.
func (c *Client) CreateGroup(ctx context.Context, name string) (int64, error) {
	var out idEnvelope
	err := c.Request(ctx, http.MethodPost, "/api/groups", map[string]string{"name": name}, &out)
	return out.ID, err
}

// GroupMembers lists a group's members.
func (c *Client) GroupMembers(ctx context.Context, groupID int64) ([]models.User, error) {
	return getList[models.User](ctx, c, fmt.Sprintf("/api/groups/%d/members", groupID))
}

// InviteByUsername creates an invite the named user accepts in the bot.
func (c *Client) InviteByUsername(ctx context.Context, groupID int64, username string) error {
	path := fmt.Sprintf("/api/groups/%d/invites/username", groupID)
	return c.Request(ctx, http.MethodPost, path, map[string]string{"username": username}, nil)
}

// AcceptInvite redeems a one-time invite token and returns the joined group id.
func (c *Client) AcceptInvite(ctx context.Context, token string) (int64, error) {
	var out struct {
		GroupID int64 `json:"group_id"`
	}
	err := c.Request(ctx, http.MethodPost, "/api/invites/accept", map[string]string{"token": token}, &out)
	return out.GroupID, err
}

// -- Tasks

// GroupTasks lists a group's tasks in server order.
func (c *Client) GroupTasks(ctx context.Context, groupID int64) ([]models.Task, error) {
	return getList[models.Task](ctx, c, fmt.Sprintf("/api/groups/%d/tasks", groupID))
}

// CreateTask creates a task in a group and returns its id.
func (c *Client) CreateTask(ctx context.Context, groupID int64, t NewTask) (int64, error) {
	var out idEnvelope
	err := c.Request(ctx, http.MethodPost, fmt.Sprintf("/api/groups/%d/tasks", groupID), t, &out)
	return out.ID, err
}

// Task fetches one task with its people.
func (c *Client) Task(ctx context.Context, id int64) (*models.Task, error) {
	var out itemEnvelope[models.Task]
	if err := c.Request(ctx, http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

// UpdateTask replaces a task's editable fields.
func (c *Client) UpdateTask(ctx context.Context, id int64, u TaskUpdate) error {
	return c.Request(ctx, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", id), u, nil)
}

// MarkTaskDone flags a task done.
func (c *Client) MarkTaskDone(ctx context.Context, id int64) error {
	return c.Request(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%d/done", id), nil, nil)
}

// -- Group finance

// GroupFinance returns a shared group's ledger and balance.
func (c *Client) GroupFinance(ctx context.Context, groupID int64) (*GroupFinance, error) {
	var out GroupFinance
	if err := c.Request(ctx, http.MethodGet, fmt.Sprintf("/api/groups/%d/finance", groupID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateGroupFinance records an income or expense in a shared group.
func (c *Client) CreateGroupFinance(ctx context.Context, groupID int64, f NewGroupFinance) error {
	return c.Request(ctx, http.MethodPost, fmt.Sprintf("/api/groups/%d/finance", groupID), f, nil)
}

// DeleteGroupFinance removes a ledger entry from a shared group.
func (c *Client) DeleteGroupFinance(ctx context.Context, groupID, itemID int64) error {
	path := fmt.Sprintf("/api/groups/%d/finance", groupID)
	return c.Request(ctx, http.MethodDelete, path, map[string]int64{"id": itemID}, nil)
}

func metaPath(groupID int64, kind models.MetaKind) string {
	return fmt.Sprintf("/api/groups/%d/finance/%s", groupID, kind)
}

// MetaItems lists a group's finance categories or payment methods.
func (c *Client) MetaItems(ctx context.Context, groupID int64, kind models.MetaKind) ([]models.MetaItem, error) {
	return getList[models.MetaItem](ctx, c, metaPath(groupID, kind))
}

// CreateMetaItem adds a category or payment method.
func (c *Client) CreateMetaItem(ctx context.Context, groupID int64, kind models.MetaKind, name string) error {
	return c.Request(ctx, http.MethodPost, metaPath(groupID, kind), map[string]string{"name": name}, nil)
}

// DeleteMetaItem removes a category or payment method.
func (c *Client) DeleteMetaItem(ctx context.Context, groupID int64, kind models.MetaKind, id int64) error {
	return c.Request(ctx, http.MethodDelete, metaPath(groupID, kind), map[string]int64{"id": id}, nil)
}

// -- Personal finance

// Finance lists the personal ledger, newest first.
func (c *Client) Finance(ctx context.Context) ([]models.FinanceItem, error) {
	return getList[models.FinanceItem](ctx, c, "/api/finance")
}

// CreateFinance records a personal ledger entry.
func (c *Client) CreateFinance(ctx context.Context, f NewFinance) (int64, error) {
	var out idEnvelope
	err := c.Request(ctx, http.MethodPost, "/api/finance", f, &out)
	return out.ID, err
}

// Balance returns the sum of the personal ledger.
func (c *Client) Balance(ctx context.Context) (int64, error) {
	var out struct {
		Balance int64 `json:"balance"`
	}
	err := c.Request(ctx, http.MethodGet, "/api/balance", nil, &out)
	return out.Balance, err
}

// -- Users and settings

// Users lists every user visible to the caller.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	return getList[models.User](ctx, c, "/api/users")
}

// NotificationSettings returns the notification toggles.
func (c *Client) NotificationSettings(ctx context.Context) (*models.NotificationSettings, error) {
	var out itemEnvelope[models.NotificationSettings]
	if err := c.Request(ctx, http.MethodGet, "/api/settings/notifications", nil, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

// UpdateNotificationSettings saves the notification toggles.
func (c *Client) UpdateNotificationSettings(ctx context.Context, s models.NotificationSettings) error {
	return c.Request(ctx, http.MethodPatch, "/api/settings/notifications", s, nil)
}

func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out listEnvelope[T]
	if err := c.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		return []T{}, nil
	}
	return out.Items, nil
}
