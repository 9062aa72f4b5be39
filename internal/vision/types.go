package vision

// Wire types for the images:annotate endpoint. Only the fields this
// service reads are modeled; the provider response carries much more.

const featureDocumentTextDetection = "DOCUMENT_TEXT_DETECTION"

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"` // base64 image bytes
}

type feature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []pageResponse `json:"responses"`
}

type pageResponse struct {
	FullTextAnnotation *FullTextAnnotation `json:"fullTextAnnotation,omitempty"`
	TextAnnotations    []TextAnnotation    `json:"textAnnotations,omitempty"`
	Error              *apiStatus          `json:"error,omitempty"`
}

// apiStatus is the google.rpc.Status payload attached to a per-image
// failure inside an otherwise-2xx annotate response.
type apiStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type TextAnnotation struct {
	Description string `json:"description"`
}

// FullTextAnnotation is the structured OCR result: pages of blocks of
// paragraphs of words of symbols, each word carrying a bounding box.
type FullTextAnnotation struct {
	Text  string `json:"text"`
	Pages []Page `json:"pages"`
}

type Page struct {
	Blocks []Block `json:"blocks"`
}

type Block struct {
	Paragraphs []Paragraph `json:"paragraphs"`
}

type Paragraph struct {
	Words []Word `json:"words"`
}

type Word struct {
	Symbols     []Symbol     `json:"symbols"`
	BoundingBox *BoundingBox `json:"boundingBox,omitempty"`
}

type Symbol struct {
	Text string `json:"text"`
}

type BoundingBox struct {
	Vertices []Vertex `json:"vertices"`
}

type Vertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}
