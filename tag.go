package id3

import (
	"strconv"
	"strings"
	"time"
)

const TimeFormat = "2006-01-02T15:04:05"

var timeFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
	"2006-01",
	"2006",
}

// energyLevel is the TXXX description Mixed In Key stores its energy
// rating under.
const energyLevel = "EnergyLevel"

// Tag is an ordered list of frames. Frames with the same ID may occur
// more than once and keep their relative order.
type Tag struct {
	Header TagHeader
	Frames []Frame
}

// NewTag returns an empty tag of the given version.
func NewTag(v Version) *Tag {
	return &Tag{Header: TagHeader{Version: v}}
}

// Clear removes all frames from the tag.
func (t *Tag) Clear() {
	t.Frames = nil
}

func (t *Tag) HasFrame(id FrameType) bool {
	return t.frameIndex(func(f Frame) bool { return f.ID() == id }) >= 0
}

// FindFrames returns all frames with the given ID, in tag order.
func (t *Tag) FindFrames(id FrameType) []Frame {
	var frames []Frame
	for _, f := range t.Frames {
		if f.ID() == id {
			frames = append(frames, f)
		}
	}
	return frames
}

func (t *Tag) AddFrame(f Frame) {
	t.Frames = append(t.Frames, f)
}

func (t *Tag) RemoveFrames(id FrameType) {
	t.removeFrames(func(f Frame) bool { return f.ID() == id })
}

func (t *Tag) removeFrames(match func(Frame) bool) {
	frames := t.Frames[:0]
	for _, f := range t.Frames {
		if !match(f) {
			frames = append(frames, f)
		}
	}
	t.Frames = frames
}

func (t *Tag) frameIndex(match func(Frame) bool) int {
	for i, f := range t.Frames {
		if match(f) {
			return i
		}
	}
	return -1
}

// replaceFrame puts f in place of the first frame that matches and
// drops every later match. Without a match f is appended.
func (t *Tag) replaceFrame(match func(Frame) bool, f Frame) {
	i := t.frameIndex(match)
	if i < 0 {
		t.AddFrame(f)
		return
	}
	t.Frames[i] = f
	rest := t.Frames[i+1:]
	t.Frames = t.Frames[:i+1]
	for _, g := range rest {
		if !match(g) {
			t.Frames = append(t.Frames, g)
		}
	}
}

// headerFor returns the header for a frame that replaces the i-th frame,
// keeping its flags, or a new header.
func (t *Tag) headerFor(i int, id FrameType) FrameHeader {
	if i < 0 || t.Frames[i].Header().opaque {
		return NewFrameHeader(id)
	}
	h := t.Frames[i].Header()
	h.raw = nil
	return h
}

func byID(id FrameType) func(Frame) bool {
	return func(f Frame) bool { return f.ID() == id }
}

// GetTextFrame returns the first value of the text frame specified by
// name.
//
// To access user text frames, specify the name like "TXXX:The
// description".
func (t *Tag) GetTextFrame(name FrameType) string {
	values := t.GetTextFrameSlice(name)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (t *Tag) GetTextFrameSlice(name FrameType) []string {
	if desc, ok := frameNameToUserFrame(name); ok {
		if f, ok := t.userTextFrame(desc); ok {
			return []string{f.Text}
		}
		return nil
	}

	for _, f := range t.Frames {
		if text, ok := f.(TextFrame); ok && text.id == name {
			return text.Values
		}
	}
	return nil
}

func (t *Tag) GetTextFrameNumber(name FrameType) int {
	s := t.GetTextFrame(name)
	if s == "" {
		return 0
	}

	i, _ := strconv.Atoi(strings.TrimSpace(s))
	return i
}

func (t *Tag) SetTextFrame(name FrameType, value string) {
	t.SetTextFrameSlice(name, []string{value})
}

func (t *Tag) SetTextFrameSlice(name FrameType, values []string) {
	if desc, ok := frameNameToUserFrame(name); ok {
		t.SetExtendedText(desc, strings.Join(values, "\x00"))
		return
	}

	match := byID(name)
	t.replaceFrame(match, TextFrame{
		FrameHeader: t.headerFor(t.frameIndex(match), name),
		Encoding:    defaultEncoding(t.Header.Version, values...),
		Values:      values,
	})
}

func (t *Tag) SetTextFrameNumber(name FrameType, value int) {
	t.SetTextFrame(name, strconv.Itoa(value))
}

func (t *Tag) Title() string {
	return t.GetTextFrame("TIT2")
}

func (t *Tag) SetTitle(title string) {
	t.SetTextFrame("TIT2", title)
}

func (t *Tag) Subtitle() string {
	return t.GetTextFrame("TIT3")
}

func (t *Tag) SetSubtitle(subtitle string) {
	t.SetTextFrame("TIT3", subtitle)
}

func (t *Tag) Artists() []string {
	return t.GetTextFrameSlice("TPE1")
}

func (t *Tag) SetArtists(artists []string) {
	t.SetTextFrameSlice("TPE1", artists)
}

func (t *Tag) Artist() string {
	return t.GetTextFrame("TPE1")
}

func (t *Tag) SetArtist(artist string) {
	t.SetTextFrame("TPE1", artist)
}

func (t *Tag) Album() string {
	return t.GetTextFrame("TALB")
}

func (t *Tag) SetAlbum(album string) {
	t.SetTextFrame("TALB", album)
}

func (t *Tag) Genre() string {
	return t.GetTextFrame("TCON")
}

func (t *Tag) SetGenre(genre string) {
	t.SetTextFrame("TCON", genre)
}

// Key returns the initial musical key.
func (t *Tag) Key() string {
	return t.GetTextFrame("TKEY")
}

func (t *Tag) SetKey(key string) {
	t.SetTextFrame("TKEY", key)
}

// Grouping returns the iTunes grouping (GRP1), which is not the same
// as the content group (TIT1).
func (t *Tag) Grouping() string {
	return t.GetTextFrame("GRP1")
}

func (t *Tag) SetGrouping(grouping string) {
	t.SetTextFrame("GRP1", grouping)
}

func (t *Tag) BPM() int {
	return t.GetTextFrameNumber("TBPM")
}

func (t *Tag) SetBPM(bpm int) {
	t.SetTextFrameNumber("TBPM", bpm)
}

// Track returns the track number and, if present, the total number of
// tracks.
func (t *Tag) Track() (n, total int) {
	s := t.GetTextFrame("TRCK")
	num, tot, _ := strings.Cut(s, "/")
	n, _ = strconv.Atoi(strings.TrimSpace(num))
	total, _ = strconv.Atoi(strings.TrimSpace(tot))
	return n, total
}

// SetTrack writes the track as "n/total", or just n if total is zero.
func (t *Tag) SetTrack(n, total int) {
	s := strconv.Itoa(n)
	if total > 0 {
		s += "/" + strconv.Itoa(total)
	}
	t.SetTextFrame("TRCK", s)
}

// RecordingTime reads TDRC, or the year from TYER in v2.3 tags.
func (t *Tag) RecordingTime() time.Time {
	s := t.GetTextFrame("TDRC")
	if s == "" {
		s = t.GetTextFrame("TYER")
	}
	if s == "" {
		return time.Time{}
	}
	rt, err := parseTime(s)
	if err != nil {
		Logging.Printf("Cannot parse recording time %q: %s", s, err)
		return time.Time{}
	}
	return rt
}

func (t *Tag) SetRecordingTime(rt time.Time) {
	if t.Header.Version.Major() < 4 {
		t.SetTextFrame("TYER", rt.Format("2006"))
		return
	}
	t.SetTextFrame("TDRC", rt.Format(TimeFormat))
}

func parseTime(input string) (res time.Time, err error) {
	for _, format := range timeFormats {
		res, err = time.Parse(format, input)
		if err == nil {
			break
		}
	}

	return
}

func frameNameToUserFrame(name FrameType) (frameName string, ok bool) {
	if len(name) < 6 {
		return "", false
	}

	if name[0:4] != "TXXX" {
		return "", false
	}

	return string(name[5:]), true
}

// UserTextFrames returns all TXXX frames.
func (t *Tag) UserTextFrames() []UserTextFrame {
	var res []UserTextFrame
	for _, f := range t.Frames {
		if u, ok := f.(UserTextFrame); ok {
			res = append(res, u)
		}
	}
	return res
}

func (t *Tag) userTextFrame(desc string) (UserTextFrame, bool) {
	for _, u := range t.UserTextFrames() {
		if u.Description == desc {
			return u, true
		}
	}
	return UserTextFrame{}, false
}

// ExtendedText returns the value of the TXXX frame with the given
// description.
func (t *Tag) ExtendedText(desc string) (string, bool) {
	f, ok := t.userTextFrame(desc)
	return f.Text, ok
}

func (t *Tag) SetExtendedText(desc, value string) {
	match := func(f Frame) bool {
		u, ok := f.(UserTextFrame)
		return ok && u.Description == desc
	}
	t.replaceFrame(match, UserTextFrame{
		FrameHeader: t.headerFor(t.frameIndex(match), "TXXX"),
		Encoding:    defaultEncoding(t.Header.Version, desc, value),
		Description: desc,
		Text:        value,
	})
}

// EnergyLevel returns the energy level DJ software stores in
// TXXX:EnergyLevel, or zero.
func (t *Tag) EnergyLevel() int {
	return t.GetTextFrameNumber("TXXX:" + energyLevel)
}

func (t *Tag) SetEnergyLevel(level int) {
	t.SetExtendedText(energyLevel, strconv.Itoa(level))
}

// Comments returns all COMM frames.
func (t *Tag) Comments() []CommentFrame {
	var res []CommentFrame
	for _, f := range t.Frames {
		if c, ok := f.(CommentFrame); ok && c.id == "COMM" {
			res = append(res, c)
		}
	}
	return res
}

// Comment returns the text of the first comment without a
// description, or of the first comment at all.
func (t *Tag) Comment() string {
	comments := t.Comments()
	for _, c := range comments {
		if c.Description == "" {
			return c.Text
		}
	}
	if len(comments) > 0 {
		return comments[0].Text
	}
	return ""
}

// SetComment replaces the comment with the given description.
func (t *Tag) SetComment(desc, text string) {
	match := func(f Frame) bool {
		c, ok := f.(CommentFrame)
		return ok && c.id == "COMM" && c.Description == desc
	}
	t.replaceFrame(match, CommentFrame{
		FrameHeader: t.headerFor(t.frameIndex(match), "COMM"),
		Encoding:    defaultEncoding(t.Header.Version, desc, text),
		Language:    "eng",
		Description: desc,
		Text:        text,
	})
}

// Objects returns all GEOB frames.
func (t *Tag) Objects() []ObjectFrame {
	var res []ObjectFrame
	for _, f := range t.Frames {
		if o, ok := f.(ObjectFrame); ok {
			res = append(res, o)
		}
	}
	return res
}

func (t *Tag) ObjectByFilename(name string) (ObjectFrame, bool) {
	for _, o := range t.Objects() {
		if o.Filename == name {
			return o, true
		}
	}
	return ObjectFrame{}, false
}

func (t *Tag) ObjectByDescription(desc string) (ObjectFrame, bool) {
	for _, o := range t.Objects() {
		if o.Description == desc {
			return o, true
		}
	}
	return ObjectFrame{}, false
}

// SetObject replaces the GEOB frame with the given description.
func (t *Tag) SetObject(filename, mimeType, desc string, data []byte) {
	match := func(f Frame) bool {
		o, ok := f.(ObjectFrame)
		return ok && o.Description == desc
	}
	t.replaceFrame(match, ObjectFrame{
		FrameHeader: t.headerFor(t.frameIndex(match), "GEOB"),
		Encoding:    defaultEncoding(t.Header.Version, filename, desc),
		MIMEType:    mimeType,
		Filename:    filename,
		Description: desc,
		Data:        data,
	})
}

// AttachedPicture returns the first picture of the given type.
func (t *Tag) AttachedPicture(ptype PictureType) (PictureFrame, bool) {
	for _, f := range t.Frames {
		if p, ok := f.(PictureFrame); ok && p.PictureType == ptype {
			return p, true
		}
	}
	return PictureFrame{}, false
}

// SetAttachedPicture replaces the picture of the same type.
func (t *Tag) SetAttachedPicture(mimeType string, ptype PictureType, desc string, data []byte) {
	match := func(f Frame) bool {
		p, ok := f.(PictureFrame)
		return ok && p.PictureType == ptype
	}
	t.replaceFrame(match, PictureFrame{
		FrameHeader: t.headerFor(t.frameIndex(match), "APIC"),
		Encoding:    defaultEncoding(t.Header.Version, desc),
		MIMEType:    mimeType,
		PictureType: ptype,
		Description: desc,
		Data:        data,
	})
}

// Popularities returns all POPM frames.
func (t *Tag) Popularities() []PopularityFrame {
	var res []PopularityFrame
	for _, f := range t.Frames {
		if p, ok := f.(PopularityFrame); ok {
			res = append(res, p)
		}
	}
	return res
}

func (t *Tag) Popularity(email string) (PopularityFrame, bool) {
	for _, p := range t.Popularities() {
		if p.Email == email {
			return p, true
		}
	}
	return PopularityFrame{}, false
}

// SetPopularity sets the rating of the POPM frame for email, keeping
// its play counter. A frame for another email is left alone.
func (t *Tag) SetPopularity(email string, rating byte) {
	match := func(f Frame) bool {
		p, ok := f.(PopularityFrame)
		return ok && p.Email == email
	}
	i := t.frameIndex(match)
	f := PopularityFrame{
		FrameHeader: t.headerFor(i, "POPM"),
		Email:       email,
		Rating:      rating,
	}
	if i >= 0 {
		f.Counter = t.Frames[i].(PopularityFrame).Counter
	}
	t.replaceFrame(match, f)
}
