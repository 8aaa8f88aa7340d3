package export

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/middleware"
)

// XLSXContentType is the media type of Workbook output.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WritePrint sends a print page with a policy that allows its inline style
// and script.
func WritePrint(c echo.Context, page []byte) error {
	c.Response().Header().Set("Content-Security-Policy", middleware.DocumentContentSecurityPolicy)
	return c.HTMLBlob(http.StatusOK, page)
}

// WriteAttachment sends f as a download.
func WriteAttachment(c echo.Context, f *File) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.Name))
	return c.Blob(http.StatusOK, f.ContentType, f.Data)
}
