package icons

const (
	IconSQLite = "󰆼"
	IconTable  = "󰓫"

	IconSuccess   = "✓"
	IconError     = "⚠"
	IconSelect    = "▸"
	IconBullet    = "•"
	IconSeparator = "  •  "
)

// TableIcon returns the marker drawn before a table name in the sidebar
func TableIcon(selected bool) string {
	if selected {
		return IconSelect
	}
	return IconTable
}
