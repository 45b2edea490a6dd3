package id3

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/bzhoek/id3rs/internal/mpeg"
)

// File is a tag read from a file on disk.
type File struct {
	*Tag

	name        string
	audioOffset int64
}

// Open reads the tag of the named file. If the file has no tag, Open
// returns a nil *File and an error for which IsNotATag is true.
func Open(name string) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, ioErr("open", name, err)
	}
	defer f.Close()

	tag, err := NewDecoder(bufio.NewReader(f)).Parse()
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, ioErr("stat", name, err)
	}

	return &File{
		Tag:         tag,
		name:        name,
		audioOffset: locateAudio(f, stat.Size(), tag.Header),
	}, nil
}

// ReadFile returns the tag of the named file.
func ReadFile(name string) (*Tag, error) {
	f, err := Open(name)
	if err != nil {
		return nil, err
	}
	return f.Tag, nil
}

// Name returns the path the file was opened from.
func (f *File) Name() string { return f.name }

// AudioOffset returns where the audio payload started when the file
// was read or last saved.
func (f *File) AudioOffset() int64 { return f.audioOffset }

// HasTag is false after Close.
func (f *File) HasTag() bool {
	return f.Tag != nil
}

// Save writes the tag back to the file it was read from.
func (f *File) Save() error {
	return f.SaveAs(f.name)
}

// SaveAs writes the tag to the named file. If that is another file
// than the one that was opened, it receives the audio of the opened
// file.
func (f *File) SaveAs(name string) error {
	if f.Tag == nil {
		return formatErrorf("File %s has been closed", f.name)
	}

	var (
		offset int64
		err    error
	)
	if sameFile(name, f.name) {
		offset, err = writeTag(name, f.Tag)
	} else {
		offset, err = copyWithTag(f.name, name, f.Tag)
	}
	if err != nil {
		return err
	}
	f.name = name
	f.audioOffset = offset
	return nil
}

// Close releases the tag. The file on disk is not touched.
func (f *File) Close() error {
	f.Tag = nil
	return nil
}

func sameFile(a, b string) bool {
	if a == b {
		return true
	}
	sa, err := os.Stat(a)
	if err != nil {
		return false
	}
	sb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(sa, sb)
}

// WriteFile replaces the tag of the named file with tag, keeping the
// audio payload byte for byte.
func WriteFile(name string, tag *Tag) error {
	_, err := writeTag(name, tag)
	return err
}

// locateAudio returns the offset of the first audio byte behind a tag
// with header h. The declared tag size is trusted if an MPEG frame
// starts right behind it. Otherwise a frame that follows only zero
// bytes, which some writers leave outside the declared size, moves
// the audio start. A tag with a zero size is searched from its first
// frame on.
func locateAudio(r io.ReaderAt, size int64, h TagHeader) int64 {
	end := int64(h.Len())
	if end > size {
		return size
	}
	sc := mpeg.NewScanner(r, size)

	if h.Size == 0 {
		off, err := sc.Find(tagHeaderSize, size)
		if err != nil {
			return end
		}
		Logging.Printf("Empty tag, audio found at %d", off)
		return off
	}

	if sc.Confirm(end) {
		return end
	}
	off, ok := skipZeros(r, end, size)
	if ok && sc.Confirm(off) {
		Logging.Printf("Tag ends at %d but audio starts at %d", end, off)
		return off
	}
	return end
}

// skipZeros returns the offset of the first non-zero byte at or after
// off.
func skipZeros(r io.ReaderAt, off, size int64) (int64, bool) {
	buf := make([]byte, mpeg.WindowSize)
	for off < size {
		n, err := r.ReadAt(buf, off)
		for i := 0; i < n; i++ {
			if buf[i] != 0 {
				return off + int64(i), true
			}
		}
		if err != nil {
			return 0, false
		}
		off += int64(n)
	}
	return 0, false
}

// occupied reports whether f starts with a tag and where its audio
// begins.
func occupied(f *os.File, size int64) (tagged bool, audio int64, err error) {
	h, err := NewDecoder(io.NewSectionReader(f, 0, size)).ParseHeader()
	switch {
	case IsNotATag(err):
		return false, 0, nil
	case err != nil:
		return false, 0, err
	}
	return true, locateAudio(f, size, h), nil
}

// writeTag writes tag into the named file and returns the new audio
// offset. If the encoded frames fit into the space of the old tag
// with at least a quarter of Padding to spare, they are written in
// place and the rest of that space turns into padding. Otherwise the
// whole file is rewritten.
func writeTag(name string, tag *Tag) (int64, error) {
	frames, err := tag.encodeFrames()
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return 0, ioErr("open", name, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return 0, ioErr("stat", name, err)
	}
	tagged, audio, err := occupied(f, stat.Size())
	if err != nil {
		return 0, err
	}

	if tagged && tagHeaderSize+int64(len(frames)+minPadding()) <= audio {
		padding := int(audio) - tagHeaderSize - len(frames)
		header, err := tag.header(len(frames), padding)
		if err != nil {
			return 0, err
		}
		Logging.Printf("Writing tag in place, %d bytes of padding left", padding)
		buf := concat(header, frames, make([]byte, padding))
		if _, err := f.WriteAt(buf, 0); err != nil {
			return 0, ioErr("write", name, err)
		}
		return audio, ioErr("close", name, f.Close())
	}

	Logging.Printf("Tag needs %d bytes, only %d available, rewriting %s", tagHeaderSize+len(frames)+minPadding(), audio, name)
	return rewrite(f, audio, stat.Size()-audio, stat.Mode().Perm(), name, tag, frames)
}

// minPadding is the padding an in-place write has to leave behind.
func minPadding() int {
	if Padding <= 0 {
		return 0
	}
	return Padding / 4
}

// copyWithTag writes the audio of src behind tag into dst.
func copyWithTag(src, dst string, tag *Tag) (int64, error) {
	frames, err := tag.encodeFrames()
	if err != nil {
		return 0, err
	}

	f, err := os.Open(src)
	if err != nil {
		return 0, ioErr("open", src, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return 0, ioErr("stat", src, err)
	}
	_, audio, err := occupied(f, stat.Size())
	if err != nil {
		return 0, err
	}
	return rewrite(f, audio, stat.Size()-audio, stat.Mode().Perm(), dst, tag, frames)
}

// rewrite creates name from the tag, Padding bytes of padding and n
// bytes of audio read from src at offset audio. The data goes to a
// temporary file that replaces name only once it is complete.
func rewrite(src io.ReaderAt, audio, n int64, mode os.FileMode, name string, tag *Tag, frames []byte) (offset int64, err error) {
	padding := Padding
	if padding < 0 {
		padding = 0
	}
	header, err := tag.header(len(frames), padding)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return 0, ioErr("create", name, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := writeMany(w, header, frames, make([]byte, padding)); err != nil {
		return 0, ioErr("write", tmp.Name(), err)
	}
	if _, err := io.Copy(w, io.NewSectionReader(src, audio, n)); err != nil {
		return 0, ioErr("copy", name, err)
	}
	if err := w.Flush(); err != nil {
		return 0, ioErr("write", tmp.Name(), err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return 0, ioErr("chmod", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, ioErr("sync", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return 0, ioErr("close", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return 0, ioErr("rename", name, err)
	}
	return int64(len(header) + len(frames) + padding), nil
}
