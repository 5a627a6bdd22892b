package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
)

// ICO containers hold one or more PNG or headerless BMP (DIB) entries. The
// decoder picks the largest entry. Registering the format lets DecodeRaster
// treat .ico like any other container.
func init() {
	image.RegisterFormat("ico", "\x00\x00\x01\x00", decodeICO, decodeICOConfig)
}

const (
	icoHeaderLen = 6
	icoEntryLen  = 16
	dibHeaderLen = 40
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

type icoEntry struct {
	width, height int
	bitCount      int
	data          []byte
}

func decodeICO(r io.Reader) (image.Image, error) {
	entry, err := readLargestICOEntry(r)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(entry.data, pngSignature) {
		return png.Decode(bytes.NewReader(entry.data))
	}
	return decodeDIB(entry.data)
}

func decodeICOConfig(r io.Reader) (image.Config, error) {
	entry, err := readLargestICOEntry(r)
	if err != nil {
		return image.Config{}, err
	}
	if bytes.HasPrefix(entry.data, pngSignature) {
		return png.DecodeConfig(bytes.NewReader(entry.data))
	}
	if len(entry.data) < dibHeaderLen {
		return image.Config{}, errors.New("ico: truncated bitmap header")
	}
	w := int(int32(binary.LittleEndian.Uint32(entry.data[4:8])))
	h := int(int32(binary.LittleEndian.Uint32(entry.data[8:12]))) / 2
	if h < 0 {
		h = -h
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: w, Height: h}, nil
}

func readLargestICOEntry(r io.Reader) (*icoEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < icoHeaderLen {
		return nil, errors.New("ico: truncated header")
	}
	if binary.LittleEndian.Uint16(data[2:4]) != 1 {
		return nil, errors.New("ico: not an icon resource")
	}
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if count == 0 {
		return nil, errors.New("ico: no images")
	}
	if len(data) < icoHeaderLen+count*icoEntryLen {
		return nil, errors.New("ico: truncated directory")
	}

	var best *icoEntry
	for i := 0; i < count; i++ {
		e := data[icoHeaderLen+i*icoEntryLen:]
		w, h := int(e[0]), int(e[1])
		if w == 0 {
			w = 256
		}
		if h == 0 {
			h = 256
		}
		size := int(binary.LittleEndian.Uint32(e[8:12]))
		offset := int(binary.LittleEndian.Uint32(e[12:16]))
		if offset < 0 || size <= 0 || offset+size > len(data) || offset+size < offset {
			continue
		}
		candidate := &icoEntry{
			width:    w,
			height:   h,
			bitCount: int(binary.LittleEndian.Uint16(e[6:8])),
			data:     data[offset : offset+size],
		}
		if best == nil || candidate.width*candidate.height > best.width*best.height ||
			(candidate.width*candidate.height == best.width*best.height && candidate.bitCount > best.bitCount) {
			best = candidate
		}
	}
	if best == nil {
		return nil, errors.New("ico: no readable images")
	}
	return best, nil
}

// decodeDIB decodes a headerless bitmap as stored in an icon. The stored
// height covers the colour bitmap and the AND mask, so it is halved. 32-bit
// entries are read directly to keep their alpha channel; other depths are
// wrapped in a BMP file header and handed to the bmp package.
func decodeDIB(dib []byte) (image.Image, error) {
	if len(dib) < dibHeaderLen {
		return nil, errors.New("ico: truncated bitmap header")
	}
	headerLen := int(binary.LittleEndian.Uint32(dib[0:4]))
	width := int(int32(binary.LittleEndian.Uint32(dib[4:8])))
	height := int(int32(binary.LittleEndian.Uint32(dib[8:12]))) / 2
	bitCount := int(binary.LittleEndian.Uint16(dib[14:16]))
	if width <= 0 || height <= 0 || headerLen < dibHeaderLen || headerLen > len(dib) {
		return nil, fmt.Errorf("ico: bad bitmap geometry %dx%d", width, height)
	}

	if bitCount == 32 {
		return decodeDIB32(dib[headerLen:], width, height)
	}

	paletteLen := 0
	if bitCount <= 8 {
		colors := int(binary.LittleEndian.Uint32(dib[32:36]))
		if colors == 0 {
			colors = 1 << bitCount
		}
		paletteLen = colors * 4
	}

	fixed := make([]byte, len(dib))
	copy(fixed, dib)
	binary.LittleEndian.PutUint32(fixed[8:12], uint32(int32(height)))

	var buf bytes.Buffer
	buf.WriteString("BM")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(14+len(fixed)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(14+headerLen+paletteLen))
	buf.Write(fixed)

	return bmp.Decode(&buf)
}

func decodeDIB32(pixels []byte, width, height int) (image.Image, error) {
	stride := width * 4
	if len(pixels) < stride*height {
		return nil, errors.New("ico: truncated pixel data")
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	noAlpha := true
	for y := 0; y < height; y++ {
		// Rows are stored bottom-up in BGRA order.
		src := pixels[(height-1-y)*stride:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			dst[x*4+0] = src[x*4+2]
			dst[x*4+1] = src[x*4+1]
			dst[x*4+2] = src[x*4+0]
			dst[x*4+3] = src[x*4+3]
			if src[x*4+3] != 0 {
				noAlpha = false
			}
		}
	}
	// Legacy icons leave the alpha byte zero and rely on the AND mask.
	if noAlpha {
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xff
		}
	}
	return img, nil
}
