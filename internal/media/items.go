package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"moodboard/internal/model"
)

// ItemFromFile turns an uploaded file into item content: images become image
// items captioned with the file name, text and markdown become notes.
func ItemFromFile(path string) (model.Content, error) {
	dataURL, mimeType, err := ReadFileDataURL(path)
	if err != nil {
		return nil, err
	}
	if !ValidateFileType(mimeType, AllowedUploadTypes) {
		return nil, model.ValidationError{Field: "file", Reason: fmt.Sprintf("unsupported type %s", mimeType)}
	}
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		if _, err := DecodeImage(dataURL); err != nil {
			return nil, err
		}
		return model.ImageContent{Src: dataURL, Caption: filepath.Base(path)}, nil
	case strings.HasPrefix(mimeType, "text/"):
		_, b, err := ParseDataURL(dataURL)
		if err != nil {
			return nil, err
		}
		return model.TextContent{Body: string(b)}, nil
	default:
		return nil, model.ValidationError{Field: "file", Reason: fmt.Sprintf("%s cannot be placed on a board", mimeType)}
	}
}
