package entities

// Tag is a user-managed label that tags nodes can attach to a conversation
type Tag struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// DefaultTags returns the seed catalog new sessions start with
func DefaultTags() []Tag {
	return []Tag{
		{Value: "marketing", Label: "Marketing", Color: "#ef4444"},
		{Value: "support", Label: "Support", Color: "#ef4444"},
		{Value: "lead", Label: "Lead", Color: "#eab308"},
		{Value: "new", Label: "New", Color: "#22c55e"},
	}
}
