package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcessingStatus(t *testing.T) {
	t.Parallel()

	require.Equal(t, JobStatus("processing 1/5"), ProcessingStatus(1, 5))
	require.Equal(t, JobStatus("processing 5/5"), ProcessingStatus(5, 5))
}

func TestEventPayload_Record(t *testing.T) {
	t.Parallel()

	rec := MergedRecord{
		ListingItem: ListingItem{
			Index:        3,
			Title:        "Alpha",
			DetailURL:    "https://videos.example.com/videos/alpha",
			ThumbnailURL: "https://cdn.example.com/a.jpg",
			Duration:     "10:05",
		},
		DetailRecord: DetailRecord{
			DownloadURL: "https://cdn.example.com/v/alpha.mp4",
			Quality:     "1080p",
			Views:       "12,345",
			Uploader:    "uploader-one",
		},
	}
	payload, err := RecordEvent(rec).Payload()
	require.NoError(t, err)
	require.JSONEq(t, `{
		"id": 3,
		"title": "Alpha",
		"detail_page_url": "https://videos.example.com/videos/alpha",
		"thumbnail_url": "https://cdn.example.com/a.jpg",
		"duration": "10:05",
		"download_url": "https://cdn.example.com/v/alpha.mp4",
		"quality": "1080p",
		"views": "12,345",
		"uploader": "uploader-one"
	}`, string(payload))
}

func TestEventPayload_RecordOmitsEmptyDownloadURL(t *testing.T) {
	t.Parallel()

	rec := MergedRecord{ListingItem: ListingItem{Title: "Alpha"}}
	payload, err := RecordEvent(rec).Payload()
	require.NoError(t, err)
	require.NotContains(t, string(payload), "download_url")
}

func TestEventPayload_Error(t *testing.T) {
	t.Parallel()

	payload, err := ErrorEvent("failed to process item 2 (Beta): boom").Payload()
	require.NoError(t, err)
	require.JSONEq(t, `{"error": "failed to process item 2 (Beta): boom"}`, string(payload))
}

func TestEventPayload_Finished(t *testing.T) {
	t.Parallel()

	payload, err := FinishedEvent().Payload()
	require.NoError(t, err)
	require.Equal(t, `{"status": "finished"}`, string(payload))
}
