package agent

// Canned agent replies, picked uniformly at random for text responses.
var Responses = []string{
	"I'm looking into that for you.",
	"Let me check the details.",
	"Got it! I'll help you with that.",
	"That's a great question. Here's what I found...",
	"I've processed your request.",
	"Sure, let me work on that right away.",
	"Here's what I came up with.",
	"Let me pull up the relevant information.",
	"I'll have that sorted out shortly.",
	"Thanks for the details! Processing now.",
	"Absolutely, here's my recommendation.",
	"I found a few options for you.",
	"Let me get back to you on that in a moment.",
	"Working on it! Almost there.",
	"Here are the results of my search.",
}

// Placeholder image URLs used for file replies. The URL doubles as the
// thumbnail path.
var PlaceholderImages = []string{
	"https://picsum.photos/400/300",
	"https://picsum.photos/seed/banter1/400/300",
	"https://picsum.photos/seed/banter2/400/300",
	"https://picsum.photos/seed/banter3/400/300",
	"https://picsum.photos/seed/banter4/400/300",
}

// Simulated file size bounds for image replies, in bytes.
const (
	minReplyFileSize = 100000
	maxReplyFileSize = 500000
)
