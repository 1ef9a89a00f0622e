package bytecode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
)

var (
	ErrBadMagic   = errors.New("not a compiled dialogue file")
	ErrBadVersion = errors.New("unsupported bytecode version")
)

// Encode serializes the file. The header counts are refreshed from the
// actual tables before writing.
func Encode(f *File) ([]byte, error) {
	f.Header.Magic = Magic
	f.Header.Version = Version
	f.Header.ConstCount = uint32(len(f.Consts))
	f.Header.CodeSize = uint32(len(f.Code))
	f.Header.NodeCount = uint32(len(f.NodeIDs))
	f.Header.LabelCount = uint32(len(f.LabelIDs))

	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, f.Header); err != nil {
		return nil, err
	}
	for _, c := range f.Consts {
		writeString(buf, c)
	}
	buf.Write(f.Code)
	writeIDTable(buf, f.NodeIDs)
	writeIDTable(buf, f.LabelIDs)
	return buf.Bytes(), nil
}

// Decode parses an encoded file, validating the magic and version first.
func Decode(data []byte) (*File, error) {
	r := bytes.NewReader(data)
	f := NewFile()
	if err := binary.Read(r, binary.LittleEndian, &f.Header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if f.Header.Magic != Magic {
		return nil, ErrBadMagic
	}
	if f.Header.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, f.Header.Version)
	}

	f.Consts = make([]string, 0, f.Header.ConstCount)
	for i := uint32(0); i < f.Header.ConstCount; i++ {
		s, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("read constant %d: %w", i, err)
		}
		f.Consts = append(f.Consts, s)
	}

	f.Code = make([]byte, f.Header.CodeSize)
	if _, err := io.ReadFull(r, f.Code); err != nil {
		return nil, fmt.Errorf("read code: %w", err)
	}

	var err error
	f.NodeIDs, err = readIDTable(r, f.Header.NodeCount)
	if err != nil {
		return nil, fmt.Errorf("read node table: %w", err)
	}
	f.LabelIDs, err = readIDTable(r, f.Header.LabelCount)
	if err != nil {
		return nil, fmt.Errorf("read label table: %w", err)
	}
	return f, nil
}

func writeString(buf *bytes.Buffer, s string) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
	buf.Write(n[:])
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if int64(n) > int64(r.Len()) {
		return "", fmt.Errorf("string length %d exceeds remaining data", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// writeIDTable writes entries ordered by id so encoding is deterministic.
func writeIDTable(buf *bytes.Buffer, ids map[string]uint32) {
	names := make([]string, 0, len(ids))
	for name := range ids {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return ids[names[i]] < ids[names[j]] })
	for _, name := range names {
		writeString(buf, name)
		var n [4]byte
		binary.LittleEndian.PutUint32(n[:], ids[name])
		buf.Write(n[:])
	}
}

func readIDTable(r *bytes.Reader, count uint32) (map[string]uint32, error) {
	ids := make(map[string]uint32, count)
	for i := uint32(0); i < count; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		var id uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, nil
}
