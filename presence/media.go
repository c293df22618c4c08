package presence

// Media is an image shown on the presence card.
type Media struct {
	// ImageKey is the asset key uploaded in the developer portal, or an image URL.
	ImageKey string
	// Tooltip is shown when hovering the image.
	Tooltip  string
}

func NewMedia(imageKey, tooltip string) *Media {
	return &Media{
		ImageKey: imageKey,
		Tooltip:  tooltip,
	}
}
