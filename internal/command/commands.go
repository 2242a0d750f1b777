// Package command provides the text command registry, parser, and the
// translation of parsed commands into editor actions.
package command

// Categories for organizing commands.
const (
	CategoryBuild   = "build"
	CategorySelect  = "selection"
	CategoryLayer   = "layers"
	CategoryView    = "view"
	CategoryProject = "project"
	CategorySystem  = "system"
)

// Handler identifiers mapping commands to editor actions or shell-local handlers.
const (
	HandlerPlace        = "place"
	HandlerMove         = "move"
	HandlerErase        = "erase"
	HandlerEraseRect    = "erase_rect"
	HandlerDelete       = "delete"
	HandlerClear        = "clear"
	HandlerSelect       = "select"
	HandlerSelectGroup  = "select_group"
	HandlerGroup        = "group"
	HandlerUngroup      = "ungroup"
	HandlerLayerAdd     = "layer_add"
	HandlerLayerRemove  = "layer_remove"
	HandlerLayerRename  = "layer_rename"
	HandlerLayerShow    = "layer_show"
	HandlerLayerHide    = "layer_hide"
	HandlerLayerLock    = "layer_lock"
	HandlerLayerUnlock  = "layer_unlock"
	HandlerLayerUse     = "layer_use"
	HandlerAssign       = "assign"
	HandlerLayers       = "layers"
	HandlerTool         = "tool"
	HandlerZoom         = "zoom"
	HandlerGrid         = "grid"
	HandlerRotate       = "rotate"
	HandlerPreview      = "preview"
	HandlerExpand       = "expand"
	HandlerCollapse     = "collapse"
	HandlerUndo         = "undo"
	HandlerRedo         = "redo"
	HandlerNew          = "new"
	HandlerPreset       = "preset"
	HandlerSave         = "save"
	HandlerLoad         = "load"
	HandlerProjects     = "projects"
	HandlerList         = "list"
	HandlerCatalog      = "catalog"
	HandlerShow         = "show"
	HandlerHelp         = "help"
	HandlerQuit         = "quit"
)

// Command defines a user-invocable planner command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument syntax.
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to an editor action or a shell-local handler.
	Handler string
}

// BuiltinCommands returns all built-in planner commands.
func BuiltinCommands() []Command {
	return []Command{
		// Build commands
		{Name: "place", Aliases: []string{"p"}, Usage: "place <structure> <x> <y> [rotation]", Help: "Place a structure", Category: CategoryBuild, Handler: HandlerPlace},
		{Name: "move", Aliases: []string{"mv"}, Usage: "move <dx> <dy>", Help: "Move the selection", Category: CategoryBuild, Handler: HandlerMove},
		{Name: "erase", Aliases: []string{"rm"}, Usage: "erase <x> <y>", Help: "Erase structures at a cell", Category: CategoryBuild, Handler: HandlerErase},
		{Name: "erase-rect", Aliases: []string{"er"}, Usage: "erase-rect <x> <y> <w> <h>", Help: "Erase structures in a rectangle", Category: CategoryBuild, Handler: HandlerEraseRect},
		{Name: "delete", Aliases: []string{"del"}, Usage: "delete", Help: "Delete the selection", Category: CategoryBuild, Handler: HandlerDelete},
		{Name: "clear", Usage: "clear", Help: "Remove every structure", Category: CategoryBuild, Handler: HandlerClear},

		// Selection commands
		{Name: "select", Aliases: []string{"sel"}, Usage: "select [id...]", Help: "Select instances; no IDs clears the selection", Category: CategorySelect, Handler: HandlerSelect},
		{Name: "select-group", Aliases: []string{"sg"}, Usage: "select-group <group>", Help: "Select every member of a group", Category: CategorySelect, Handler: HandlerSelectGroup},
		{Name: "group", Usage: "group <name>", Help: "Group the selection", Category: CategorySelect, Handler: HandlerGroup},
		{Name: "ungroup", Usage: "ungroup <group>", Help: "Dissolve a group", Category: CategorySelect, Handler: HandlerUngroup},

		// Layer commands
		{Name: "layer-add", Aliases: []string{"la"}, Usage: "layer-add <name>", Help: "Add a layer", Category: CategoryLayer, Handler: HandlerLayerAdd},
		{Name: "layer-remove", Aliases: []string{"lr"}, Usage: "layer-remove <layer>", Help: "Remove a layer and its structures", Category: CategoryLayer, Handler: HandlerLayerRemove},
		{Name: "layer-rename", Usage: "layer-rename <layer> <name>", Help: "Rename a layer", Category: CategoryLayer, Handler: HandlerLayerRename},
		{Name: "layer-show", Usage: "layer-show <layer>", Help: "Show a layer", Category: CategoryLayer, Handler: HandlerLayerShow},
		{Name: "layer-hide", Usage: "layer-hide <layer>", Help: "Hide a layer", Category: CategoryLayer, Handler: HandlerLayerHide},
		{Name: "layer-lock", Usage: "layer-lock <layer>", Help: "Lock a layer", Category: CategoryLayer, Handler: HandlerLayerLock},
		{Name: "layer-unlock", Usage: "layer-unlock <layer>", Help: "Unlock a layer", Category: CategoryLayer, Handler: HandlerLayerUnlock},
		{Name: "layer-use", Aliases: []string{"lu"}, Usage: "layer-use <layer>", Help: "Make a layer active for placement", Category: CategoryLayer, Handler: HandlerLayerUse},
		{Name: "assign", Usage: "assign <layer> <id...>", Help: "Move instances onto a layer", Category: CategoryLayer, Handler: HandlerAssign},
		{Name: "layers", Usage: "layers", Help: "List layers", Category: CategoryLayer, Handler: HandlerLayers},

		// View commands
		{Name: "tool", Usage: "tool <select|place|erase|pan>", Help: "Choose the editing tool", Category: CategoryView, Handler: HandlerTool},
		{Name: "zoom", Usage: "zoom <factor>", Help: "Set the zoom factor", Category: CategoryView, Handler: HandlerZoom},
		{Name: "grid", Usage: "grid", Help: "Toggle the grid overlay", Category: CategoryView, Handler: HandlerGrid},
		{Name: "rotate", Aliases: []string{"r"}, Usage: "rotate", Help: "Rotate the placement preview by 90 degrees", Category: CategoryView, Handler: HandlerRotate},
		{Name: "preview", Usage: "preview <structure>", Help: "Choose the structure to place", Category: CategoryView, Handler: HandlerPreview},
		{Name: "expand", Usage: "expand <category>", Help: "Expand a catalog category", Category: CategoryView, Handler: HandlerExpand},
		{Name: "collapse", Usage: "collapse <category>", Help: "Collapse a catalog category", Category: CategoryView, Handler: HandlerCollapse},

		// Project commands
		{Name: "undo", Aliases: []string{"u"}, Usage: "undo", Help: "Undo the last change", Category: CategoryProject, Handler: HandlerUndo},
		{Name: "redo", Usage: "redo", Help: "Redo the last undone change", Category: CategoryProject, Handler: HandlerRedo},
		{Name: "new", Usage: "new <width> <height> [name]", Help: "Start a new project", Category: CategoryProject, Handler: HandlerNew},
		{Name: "preset", Usage: "preset <width> <height>", Help: "Resize the ship grid", Category: CategoryProject, Handler: HandlerPreset},
		{Name: "save", Usage: "save [path]", Help: "Save the project", Category: CategoryProject, Handler: HandlerSave},
		{Name: "load", Usage: "load <path|name>", Help: "Load a project", Category: CategoryProject, Handler: HandlerLoad},
		{Name: "projects", Usage: "projects", Help: "List saved projects", Category: CategoryProject, Handler: HandlerProjects},

		// System commands
		{Name: "list", Aliases: []string{"ls"}, Usage: "list", Help: "List placed structures", Category: CategorySystem, Handler: HandlerList},
		{Name: "catalog", Aliases: []string{"cat"}, Usage: "catalog", Help: "List available structures", Category: CategorySystem, Handler: HandlerCatalog},
		{Name: "show", Usage: "show", Help: "Draw the ship grid", Category: CategorySystem, Handler: HandlerShow},
		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Leave the shell", Category: CategorySystem, Handler: HandlerQuit},
	}
}
