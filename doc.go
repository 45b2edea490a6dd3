/*
Package id3 reads and writes ID3v2.3 and ID3v2.4 tags.

Supported versions

Tags are written in the version they were read in. Frame sizes,
flags and text encodings follow that version: UTF-16BE and UTF-8 text
in a v2.3 tag are read, but written as ISO-8859-1 or UTF-16.

Lenient reading

Real files often carry tags that do not follow the standard. A frame
whose size runs past the end of the tag ends the frame list; the rest
is treated as padding. Frames that fail to decode are kept as
RawFrame with their bytes and the error, and text that fails to
decode is returned as well as possible while the original bytes are
written back. Compressed and encrypted frames are never decoded and
are written back as they were.

Unsynchronisation

In v2.3 tags the unsynchronisation flag of the header applies to the
whole frame region. In v2.4 tags it marks every frame, and each frame
may also be unsynchronised on its own.

Writing

If the new frames fit into the space of the old tag, leaving at least
a quarter of Padding free, they are written in place and the
remainder becomes padding. Otherwise the file is
rewritten with Padding bytes of padding, through a temporary file that
replaces the original only when complete. The audio payload is copied
byte for byte. Extended headers and footers are not written.

Accessing and manipulating frames

There are two ways to access frames: Using provided getter and setter
methods, and working directly with Tag.Frames, which holds the frames
in file order.
*/
package id3
