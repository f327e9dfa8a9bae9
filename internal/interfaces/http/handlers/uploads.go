package handlers

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"kitchenware-market.backend/internal/domain/entities"
)

// openedUploads keeps the multipart files open until the usecase has read them.
type openedUploads struct {
	uploads []*entities.Upload
	files   []multipart.File
}

func (o *openedUploads) Close() {
	for _, f := range o.files {
		_ = f.Close()
	}
}

func openFiles(headers []*multipart.FileHeader) (*openedUploads, error) {
	out := &openedUploads{}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			out.Close()
			return nil, err
		}
		out.files = append(out.files, f)
		out.uploads = append(out.uploads, &entities.Upload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Content:  f,
		})
	}
	return out, nil
}

// formFiles returns the files posted under field, or none for non-multipart bodies.
func formFiles(c *gin.Context, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[field]
}
