package util

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type VideoInfo struct {
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Format   string  `json:"format"`
	Size     int64   `json:"size"`
}

type probeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
		Format   string `json:"format_name"`
	} `json:"format"`
}

// GetVideoInfo probes an uploaded video for its duration, dimensions and
// container format. Fields ffprobe cannot determine fall back to zero values.
func GetVideoInfo(videoPath string) (*VideoInfo, error) {
	stat, err := os.Stat(videoPath)
	if err != nil {
		return nil, fmt.Errorf("video file not found: %v", err)
	}

	raw, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe video: %v", err)
	}

	var probe probeResult
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, fmt.Errorf("failed to parse video metadata: %v", err)
	}

	info := &VideoInfo{
		Format: "unknown",
		Size:   stat.Size(),
	}

	for _, stream := range probe.Streams {
		if stream.CodecType == "video" {
			info.Width, info.Height = stream.Width, stream.Height
			break
		}
	}

	if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = d
	}
	if s, err := strconv.ParseInt(probe.Format.Size, 10, 64); err == nil {
		info.Size = s
	}

	// format_name can be a comma separated list of aliases.
	if probe.Format.Format != "" {
		info.Format = strings.SplitN(probe.Format.Format, ",", 2)[0]
	}

	return info, nil
}
