package models

// TranscriptLoop is a bounded time segment of a video transcript, owned by the
// ingestion subsystem. The generation pipeline only reads it.
type TranscriptLoop struct {
	ID             string              `json:"id"`
	VideoTitle     string              `json:"video_title"`
	StartTime      float64             `json:"start_time"`
	EndTime        float64             `json:"end_time"`
	TranscriptText string              `json:"transcript_text"`
	Segments       []TranscriptSegment `json:"segments"`
}

type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
