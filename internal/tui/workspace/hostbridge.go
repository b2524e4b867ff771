package workspace

// BackButton is the host's back affordance.
type BackButton interface {
	Show()
	Hide()
	Visible() bool
}

// HostBridge is the optional capability provider the client runs inside.
type HostBridge interface {
	// InitData returns the host-signed launch payload, or "".
	InitData() string
	// Ready tells the host the client finished starting.
	Ready()
	// Expand asks the host for the full viewport.
	Expand()
	BackButton() BackButton
}

// TerminalBridge is the host bridge of a plain terminal session. The back
// button is a status bar badge pressed with backspace.
type TerminalBridge struct {
	initData string
	button   *TerminalBackButton
	ready    bool
	expanded bool
}

// NewTerminalBridge creates a terminal bridge carrying initData.
func NewTerminalBridge(initData string) *TerminalBridge {
	return &TerminalBridge{initData: initData, button: &TerminalBackButton{}}
}

// InitData implements HostBridge.
func (b *TerminalBridge) InitData() string { return b.initData }

// Ready implements HostBridge.
func (b *TerminalBridge) Ready() { b.ready = true }

// Expand implements HostBridge. The program already runs in the alternate
// screen, so this only records the request.
func (b *TerminalBridge) Expand() { b.expanded = true }

// IsReady reports whether Ready was called.
func (b *TerminalBridge) IsReady() bool { return b.ready }

// BackButton implements HostBridge.
func (b *TerminalBridge) BackButton() BackButton { return b.button }

// TerminalBackButton is the status bar back badge.
type TerminalBackButton struct {
	visible bool
}

// Show implements BackButton.
func (b *TerminalBackButton) Show() { b.visible = true }

// Hide implements BackButton.
func (b *TerminalBackButton) Hide() { b.visible = false }

// Visible implements BackButton.
func (b *TerminalBackButton) Visible() bool { return b.visible }

// BackBridge keeps the host back button in step with the router.
type BackBridge struct {
	router *Router
	button BackButton
	root   ScreenID
}

// NewBackBridge binds router to host's back button. A nil host disables
// the bridge.
func NewBackBridge(router *Router, host HostBridge, root ScreenID) *BackBridge {
	b := &BackBridge{router: router, root: root}
	if host != nil {
		b.button = host.BackButton()
	}
	return b
}

// Sync shows the button iff the active screen is not the root and there is
// somewhere to go back to.
func (b *BackBridge) Sync() {
	if b.button == nil {
		return
	}
	if b.router.Active() != b.root && b.router.CanGoBack() {
		b.button.Show()
	} else {
		b.button.Hide()
	}
}

// Visible reports whether the button is currently shown.
func (b *BackBridge) Visible() bool {
	return b.button != nil && b.button.Visible()
}

// Click navigates back, falling back to the root, and re-syncs.
func (b *BackBridge) Click() Transition {
	t := b.router.Back(b.root)
	b.Sync()
	return t
}
