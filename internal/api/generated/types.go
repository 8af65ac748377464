// Пакет generated — типы и маршрутизация HTTP API по контракту
// internal/api/openapi/openapi.yaml в формате oapi-codegen (chi-server).
package generated

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Defines values for Category.
const (
	CategoryAudio    Category = "audio"
	CategoryDocument Category = "document"
	CategoryImage    Category = "image"
	CategoryOther    Category = "other"
	CategoryVideo    Category = "video"
)

// Defines values for BrowseParamsSort.
const (
	DateAsc  BrowseParamsSort = "date-asc"
	DateDesc BrowseParamsSort = "date-desc"
	NameAsc  BrowseParamsSort = "name-asc"
	NameDesc BrowseParamsSort = "name-desc"
	SizeAsc  BrowseParamsSort = "size-asc"
	SizeDesc BrowseParamsSort = "size-desc"
)

// BrowseResponse defines model for BrowseResponse.
type BrowseResponse struct {
	Files   []File   `json:"files"`
	Folders []Folder `json:"folders"`
	Path    []Folder `json:"path"`
}

// Category defines model for Category.
type Category string

// CreateFolderRequest defines model for CreateFolderRequest.
type CreateFolderRequest struct {
	Name     string              `json:"name"`
	ParentId *openapi_types.UUID `json:"parent_id,omitempty"`
}

// Error defines model for Error.
type Error struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// File defines model for File.
type File struct {
	Category    *Category           `json:"category,omitempty"`
	ContentType string              `json:"content_type"`
	FolderId    *openapi_types.UUID `json:"folder_id"`
	Id          openapi_types.UUID  `json:"id"`
	Name        string              `json:"name"`
	Size        int64               `json:"size"`
	UploadedAt  time.Time           `json:"uploaded_at"`
}

// FileList defines model for FileList.
type FileList struct {
	Files []File `json:"files"`
}

// Folder defines model for Folder.
type Folder struct {
	CreatedAt time.Time           `json:"created_at"`
	Id        openapi_types.UUID  `json:"id"`
	Name      string              `json:"name"`
	ParentId  *openapi_types.UUID `json:"parent_id"`
}

// FolderDetails defines model for FolderDetails.
type FolderDetails struct {
	Folder Folder   `json:"folder"`
	Path   []Folder `json:"path"`
}

// FolderList defines model for FolderList.
type FolderList struct {
	Folders []Folder `json:"folders"`
}

// ShareLink defines model for ShareLink.
type ShareLink struct {
	ExpiresAt time.Time `json:"expires_at"`
	Url       string    `json:"url"`
}

// TypeCount defines model for TypeCount.
type TypeCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
	Label    string   `json:"label"`
}

// TypeCountList defines model for TypeCountList.
type TypeCountList struct {
	Types []TypeCount `json:"types"`
}

// UploadResponse defines model for UploadResponse.
type UploadResponse struct {
	Files []UploadedFile `json:"files"`
}

// UploadedFile defines model for UploadedFile.
type UploadedFile struct {
	Id openapi_types.UUID `json:"id"`
}

// FileId defines model for FileId.
type FileId = openapi_types.UUID

// FolderId defines model for FolderId.
type FolderId = openapi_types.UUID

// GetFileContentParams defines parameters for GetFileContent.
type GetFileContentParams struct {
	Download *bool `form:"download,omitempty" json:"download,omitempty"`
}

// BrowseParams defines parameters for Browse.
type BrowseParams struct {
	FolderId *openapi_types.UUID `form:"folder_id,omitempty" json:"folder_id,omitempty"`
	Q        *string             `form:"q,omitempty" json:"q,omitempty"`
	Type     *[]Category         `form:"type,omitempty" json:"type,omitempty"`
	Sort     *BrowseParamsSort   `form:"sort,omitempty" json:"sort,omitempty"`
}

// BrowseParamsSort defines parameters for Browse.
type BrowseParamsSort string

// CreateFolderJSONRequestBody defines body for CreateFolder for application/json ContentType.
type CreateFolderJSONRequestBody = CreateFolderRequest
