package runpheno

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

func (dt DataType) String() string {
	switch dt {
	case DataTypeNoCompression:
		return "uncompressed"
	case DataTypeGzip:
		return "gzip"
	case DataTypeZip:
		return "zip"
	case DataTypeXZ:
		return "xz"
	case DataTypeZ:
		return "zlib"
	case DataTypeBZip2:
		return "bzip2"
	}

	return "invalid"
}

// Byte code signatures from https://stackoverflow.com/a/19127748/199475
var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeZ:     {0x1f, 0x9d},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

const sniffLength = 6

// DetectDataType checks the leading bytes of a stream against a set of known
// compression signatures. Inputs shorter than a signature simply don't match
// it.
func DetectDataType(head []byte) DataType {
	for dt, sig := range byteCodeSigs {
		if bytes.HasPrefix(head, sig) {
			return dt
		}
	}

	return DataTypeNoCompression
}

// MaybeDecompress wraps rc with the decompressor that matches its leading
// bytes. Closing the returned ReadCloser closes rc.
func MaybeDecompress(rc io.ReadCloser) (io.ReadCloser, DataType, error) {
	br := bufio.NewReader(rc)

	// Peek returns fewer bytes (and io.EOF) for tiny files, which is fine: a
	// file that short can't be compressed.
	head, peekErr := br.Peek(sniffLength)
	if peekErr != nil && peekErr != io.EOF && peekErr != bufio.ErrBufferFull {
		return nil, DataTypeInvalid, peekErr
	}

	dt := DetectDataType(head)

	var r io.Reader
	var err error
	switch dt {
	case DataTypeGzip:
		r, err = gzip.NewReader(br)
	case DataTypeZip:
		zr := zipstream.NewReader(br)
		if _, err = zr.Next(); err != nil {
			err = fmt.Errorf("zip archive has no readable entry: %w", err)
		}
		r = zr
	case DataTypeBZip2:
		r = bzip2.NewReader(br)
	case DataTypeXZ:
		r, err = xz.NewReader(br, 0)
	case DataTypeZ:
		r, err = zlib.NewReader(br)
	default:
		r = br
	}
	if err != nil {
		return nil, DataTypeInvalid, err
	}

	return &readCloser{Reader: r, closer: rc}, dt, nil
}

// readCloser pairs a (possibly decompressing) reader with the Closer of the
// underlying source.
type readCloser struct {
	io.Reader
	closer io.Closer
}

// Close closes the decompressor (if it has a Close) and then the source,
// returning the first error.
func (c *readCloser) Close() error {
	var err error
	if rc, ok := c.Reader.(io.Closer); ok {
		err = rc.Close()
	}

	if cerr := c.closer.Close(); err == nil {
		err = cerr
	}

	return err
}
