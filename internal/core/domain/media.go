package domain

import "strings"

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
	MediaTypeGIF   MediaType = "gif"
)

type Media struct {
	URL  string
	Type MediaType
}

// UploadedFile est le descripteur rendu par le stockage d'upload.
type UploadedFile struct {
	Destination string
	Filename    string
	MimeType    string
}

func (f UploadedFile) StoragePath() string {
	return f.Destination + "/" + f.Filename
}

// ClassifyMedia mappe un content-type vers un des quatre labels.
// L'ordre compte : premier préfixe trouvé. Tout le reste (inconnu, vide) tombe sur "gif".
func ClassifyMedia(contentType string) MediaType {
	switch {
	case strings.HasPrefix(contentType, "image"):
		return MediaTypeImage
	case strings.HasPrefix(contentType, "video"):
		return MediaTypeVideo
	case strings.HasPrefix(contentType, "audio"):
		return MediaTypeAudio
	default:
		return MediaTypeGIF
	}
}

// NewMedia construit la liste ordonnée des médias d'un post. Jamais nil.
func NewMedia(files []UploadedFile) []Media {
	media := make([]Media, 0, len(files))
	for _, f := range files {
		media = append(media, Media{
			URL:  f.StoragePath(),
			Type: ClassifyMedia(f.MimeType),
		})
	}
	return media
}
