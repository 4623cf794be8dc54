package feishu

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/flashlark/larkmemo/internal/biz/domain"
)

const (
	imagesPath = "/open-apis/im/v1/images"
	filesPath  = "/open-apis/im/v1/files"
)

// Upload decodes an attachment and uploads it to the image or file endpoint,
// returning the image_key or file_key. Sizes are checked by the caller.
func (c *Client) Upload(ctx context.Context, tok domain.AccessToken, base64Data, fileName, mimeType string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return "", &domain.UploadError{Kind: domain.UploadErrorEncoding, FileName: fileName, Err: err}
	}

	isImage := domain.IsImageMime(mimeType)
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	path, keyField := filesPath, "file_key"
	if isImage {
		path, keyField = imagesPath, "image_key"
		_ = w.WriteField("image_type", larkim.ImageTypeMessage)
		err = writeFilePart(w, "image", fileName, raw)
	} else {
		_ = w.WriteField("file_type", uploadFileType(fileName, mimeType))
		_ = w.WriteField("file_name", fileName)
		err = writeFilePart(w, "file", fileName, raw)
	}
	if err == nil {
		err = w.Close()
	}
	if err != nil {
		return "", &domain.UploadError{Kind: domain.UploadErrorEncoding, FileName: fileName, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, BaseURL(tok.Domain)+path, &buf)
	if err != nil {
		return "", &domain.UploadError{Kind: domain.UploadErrorHTTP, FileName: fileName, Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok.Value)

	status, body, err := c.do(req)
	if err != nil {
		c.logger.Warn("upload transport failed", slog.String("file_name", fileName), slog.Any("error", err))
		return "", &domain.UploadError{Kind: domain.UploadErrorHTTP, FileName: fileName, StatusCode: status, Err: err}
	}

	var result struct {
		apiEnvelope
		Data map[string]any `json:"data"`
	}
	parseErr := json.Unmarshal(body, &result)

	if !isSuccessStatus(status) {
		upErr := &domain.UploadError{Kind: domain.UploadErrorHTTP, FileName: fileName, StatusCode: status}
		if parseErr == nil {
			upErr.Code, upErr.Msg = result.Code, result.Msg
		}
		c.logger.Warn("upload rejected", slog.String("file_name", fileName), slog.Int("status", status))
		return "", upErr
	}
	if parseErr != nil {
		c.logger.Warn("upload response unreadable", slog.String("file_name", fileName), slog.String("body", truncateBody(body)))
		return "", &domain.UploadError{Kind: domain.UploadErrorParse, FileName: fileName, StatusCode: status, Err: parseErr}
	}
	if result.Code != 0 {
		c.logger.Warn("upload api error", slog.String("file_name", fileName), slog.Int("code", result.Code), slog.String("msg", result.Msg))
		return "", &domain.UploadError{Kind: domain.UploadErrorAPI, FileName: fileName, StatusCode: status, Code: result.Code, Msg: result.Msg}
	}

	key, _ := result.Data[keyField].(string)
	if key == "" {
		c.logger.Warn("upload response without key", slog.String("file_name", fileName), slog.String("field", keyField))
		return "", &domain.UploadError{Kind: domain.UploadErrorResponse, FileName: fileName, StatusCode: status, Msg: "missing " + keyField}
	}
	return key, nil
}

func writeFilePart(w *multipart.Writer, field, fileName string, raw []byte) error {
	part, err := w.CreateFormFile(field, fileName)
	if err != nil {
		return err
	}
	_, err = part.Write(raw)
	return err
}

// uploadFileType maps an attachment to the file_type the file endpoint accepts
func uploadFileType(fileName, mimeType string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	mt := strings.ToLower(mimeType)
	switch {
	case ext == "mp4" || mt == "video/mp4":
		return larkim.FileTypeMp4
	case ext == "pdf" || mt == "application/pdf":
		return larkim.FileTypePdf
	case ext == "doc" || ext == "docx" || strings.Contains(mt, "msword") || strings.Contains(mt, "wordprocessingml"):
		return larkim.FileTypeDoc
	case ext == "xls" || ext == "xlsx" || strings.Contains(mt, "ms-excel") || strings.Contains(mt, "spreadsheetml"):
		return larkim.FileTypeXls
	case ext == "ppt" || ext == "pptx" || strings.Contains(mt, "ms-powerpoint") || strings.Contains(mt, "presentationml"):
		return larkim.FileTypePpt
	case ext == "opus" || mt == "audio/opus":
		return larkim.FileTypeOpus
	}
	return larkim.FileTypeStream
}
