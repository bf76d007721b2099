package commontypes

import "resultflow/session"

// FlowResult represents a single item in the list of results for Flow Launcher.
type FlowResult struct {
	Title            string            `json:"Title"`
	SubTitle         string            `json:"SubTitle"`
	IcoPath          string            `json:"IcoPath,omitempty"`
	Score            int               `json:"Score"`
	JsonRPCAction    JsonRPCAction     `json:"JsonRPCAction"`
	ContextMenuItems []ContextMenuItem `json:"ContextMenuItems,omitempty"`
}

// JsonRPCAction defines an action to be performed by Flow Launcher.
type JsonRPCAction struct {
	Method     string        `json:"method"`
	Parameters []interface{} `json:"parameters"`
}

// ContextMenuItem defines an item in the context menu for a FlowResult.
type ContextMenuItem struct {
	Title         string        `json:"Title"`
	SubTitle      string        `json:"SubTitle"`
	IcoPath       string        `json:"IcoPath,omitempty"`
	JsonRPCAction JsonRPCAction `json:"JsonRPCAction"`
}

// ActivateRequest is posted back by the frontend when the user picks a
// result or one of its context menu entries. A missing Child addresses the
// result itself.
type ActivateRequest struct {
	Set   string `json:"set"`
	Index int    `json:"index"`
	Child *int   `json:"child,omitempty"`
}

// ChildIndex returns the requested child, or session.NoChild when none was sent.
func (r ActivateRequest) ChildIndex() int {
	if r.Child == nil {
		return session.NoChild
	}
	return *r.Child
}

// ActivateResponse tells the frontend whether to hide its window.
type ActivateResponse struct {
	Hide  bool   `json:"hide"`
	Error string `json:"error,omitempty"`
}
