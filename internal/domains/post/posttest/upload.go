package posttest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime"
	"mime/multipart"
)

// PNG encodes a w x h image.
func PNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 200, A: 255})
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// MultipartBody builds a multipart form with text fields and an optional "image" file.
// It returns the body and its Content-Type.
func MultipartBody(fields map[string]string, filename string, file []byte) (*bytes.Buffer, string) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			panic(err)
		}
	}
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		if err != nil {
			panic(err)
		}
		if _, err := part.Write(file); err != nil {
			panic(err)
		}
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return body, w.FormDataContentType()
}

// FileHeader returns the parsed header of an uploaded "image" file.
func FileHeader(filename string, data []byte) *multipart.FileHeader {
	body, contentType := MultipartBody(nil, filename, data)
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		panic(err)
	}
	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(32 << 20)
	if err != nil {
		panic(err)
	}
	return form.File["image"][0]
}
