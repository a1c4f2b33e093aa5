package encode

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"

	"github.com/bogem/id3v2/v2"

	"github.com/binaryphile/nsf2wav/internal/wav"
)

// ChunkID is the RIFF chunk carrying an ID3v2 tag in a WAV file.
const ChunkID = "id3 "

// TrackMeta contains module metadata for one rendered track.
type TrackMeta struct {
	Artist     string
	Game       string
	Title      string
	Copyright  string
	Ripper     string
	TrackNum   int
	TrackTotal int
}

// TagSet contains the ID3 frames to be written
type TagSet struct {
	Artist     string
	Album      string
	Title      string
	Copyright  string
	EncodedBy  string
	TrackNum   int
	TrackTotal int
	Year       int
	Genre      string
}

var yearPattern = regexp.MustCompile(`\b(19[7-9][0-9]|20[0-9][0-9])\b`)

// BuildTags maps module metadata to ID3 frames. The year is taken from
// the copyright string, where NSF rips conventionally put it.
// This is a pure function: TrackMeta → TagSet
func BuildTags(meta TrackMeta) TagSet {
	tags := TagSet{
		Artist:     known(meta.Artist),
		Album:      known(meta.Game),
		Title:      known(meta.Title),
		Copyright:  known(meta.Copyright),
		EncodedBy:  known(meta.Ripper),
		TrackNum:   meta.TrackNum,
		TrackTotal: meta.TrackTotal,
		Genre:      "Game",
	}
	if m := yearPattern.FindString(tags.Copyright); m != "" {
		tags.Year, _ = strconv.Atoi(m)
	}
	return tags
}

// Bytes serializes the tag as ID3v2.4.
func (t TagSet) Bytes() ([]byte, error) {
	tag := id3v2.NewEmptyTag()
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetVersion(4)

	tag.SetArtist(t.Artist)
	tag.SetAlbum(t.Album)
	tag.SetTitle(t.Title)
	tag.SetGenre(t.Genre)

	if t.Year > 0 {
		tag.SetYear(strconv.Itoa(t.Year))
	}

	// Track number (format: N/Total)
	if t.TrackTotal > 0 {
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8,
			fmt.Sprintf("%d/%d", t.TrackNum, t.TrackTotal))
	} else if t.TrackNum > 0 {
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8,
			strconv.Itoa(t.TrackNum))
	}

	if t.Copyright != "" {
		tag.AddTextFrame("TCOP", id3v2.EncodingUTF8, t.Copyright)
	}
	if t.EncodedBy != "" {
		tag.AddTextFrame("TENC", id3v2.EncodingUTF8, t.EncodedBy)
	}

	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write tag: %w", err)
	}
	return buf.Bytes(), nil
}

// Chunk returns the tag framed as an "id3 " RIFF chunk for appending
// after the WAV data.
func (t TagSet) Chunk() ([]byte, error) {
	data, err := t.Bytes()
	if err != nil {
		return nil, err
	}
	return wav.Chunk(ChunkID, data), nil
}
