// Package gallery keeps a local record of the user's processed images so
// the gallery renders without a round trip and survives offline sessions.
// The backend listing is the source of truth; Sync reconciles the local
// store against it.
package gallery

import "time"

// Item is one processed image known locally. LocalPath is empty until the
// image bytes have been downloaded.
type Item struct {
	ID               string
	Filename         string
	OriginalFilename string
	Style            string
	URL              string
	TakenAt          time.Time
	LocalPath        string
	SyncedAt         time.Time
}
