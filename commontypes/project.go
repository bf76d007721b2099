package commontypes

import (
	"resultflow/items"
	"resultflow/session"
)

const (
	MethodActivate    = "resultflow.activate"
	MethodChangeQuery = "Flow.Launcher.ChangeQuery"
)

// IconResolver turns an item's icon handle into a displayable path.
type IconResolver interface {
	Resolve(icon items.Icon) items.Icon
}

// FromResultSet projects a result set onto Flow Launcher results. Scores
// descend with position so the frontend keeps the session's order; children
// become context menu entries.
func FromResultSet(set *session.ResultSet, icons IconResolver) []FlowResult {
	entries := set.Entries()
	results := make([]FlowResult, 0, len(entries))

	for i, entry := range entries {
		item := entry.Item
		result := FlowResult{
			Title:         item.Name(),
			SubTitle:      item.Info(),
			IcoPath:       resolveIcon(icons, item.Icon()),
			Score:         len(entries) - i,
			JsonRPCAction: activateAction(set.Ref(i)),
		}
		for c, child := range item.Children() {
			result.ContextMenuItems = append(result.ContextMenuItems, ContextMenuItem{
				Title:         child.Name(),
				SubTitle:      child.Info(),
				IcoPath:       resolveIcon(icons, child.Icon()),
				JsonRPCAction: activateAction(set.ChildRef(i, c)),
			})
		}
		results = append(results, result)
	}
	return results
}

// NoResults is shown for a non-empty query nobody answered.
func NoResults(query, iconPath string) FlowResult {
	return FlowResult{
		Title:    "No results found",
		SubTitle: "Please try a different query.",
		IcoPath:  iconPath,
		JsonRPCAction: JsonRPCAction{
			Method:     MethodChangeQuery,
			Parameters: []interface{}{query, false},
		},
	}
}

func activateAction(ref session.Ref) JsonRPCAction {
	return JsonRPCAction{
		Method:     MethodActivate,
		Parameters: []interface{}{ref.Set.String(), ref.Index, ref.Child},
	}
}

func resolveIcon(icons IconResolver, icon items.Icon) string {
	if icons != nil {
		icon = icons.Resolve(icon)
	}
	return icon.Path
}
