package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	// additional source formats beyond those imaging registers
	_ "golang.org/x/image/webp"
)

var ErrUndecodableImage = errors.New("source object is not a decodable image")

// decodeImage turns the fetched object body into a bitmap. The detected content type is returned
// for logging.
func decodeImage(body []byte) (image.Image, string, error) {

	mtype := mimetype.Detect(body)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, mtype.String(), fmt.Errorf("%w: detected %s", ErrUndecodableImage, mtype.String())
	}

	img, err := imaging.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, mtype.String(), fmt.Errorf("%w: %s", ErrUndecodableImage, err.Error())
	}
	return img, mtype.String(), nil
}

// encodePNG re-encodes the bitmap losslessly for submission to textract
func encodePNG(img image.Image) ([]byte, error) {

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//
// end of file
//
