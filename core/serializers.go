package core

import (
	"time"

	muss "github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the persisted domain types. The metadata
// shapes are closed structures validated at the storage boundary, so the
// serializer set stays small enough to maintain by hand.

var (
	// IDMUS serializes ID values.
	IDMUS = idMUS{}
	// JobMUS serializes Job values.
	JobMUS = jobMUS{}
	// DocumentMUS serializes Document values.
	DocumentMUS = documentMUS{}
	// DocumentPageMUS serializes DocumentPage values.
	DocumentPageMUS = documentPageMUS{}
	// ExtractionMUS serializes Extraction values.
	ExtractionMUS = extractionMUS{}
	// EmbeddingMUS serializes Embedding values.
	EmbeddingMUS = embeddingMUS{}

	timestampMUS = timeMUS{}
	vectorMUS    = ord.NewSliceSer[float32](varint.Float32)
	stringsMUS   = ord.NewSliceSer[string](ord.String)
	lineItemsMUS = ord.NewSliceSer[LineItem](lineItemMUS{})
)

var (
	_ muss.Serializer[ID]           = IDMUS
	_ muss.Serializer[Job]          = JobMUS
	_ muss.Serializer[Document]     = DocumentMUS
	_ muss.Serializer[DocumentPage] = DocumentPageMUS
	_ muss.Serializer[Extraction]   = ExtractionMUS
	_ muss.Serializer[Embedding]    = EmbeddingMUS
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int { return varint.Uint64.Marshal(uint64(v), bs) }

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(v ID) int { return varint.Uint64.Size(uint64(v)) }

func (idMUS) Skip(bs []byte) (int, error) { return varint.Uint64.Skip(bs) }

// timeMUS encodes timestamps as Unix microseconds. The zero time is preserved
// through a sentinel so IsZero keeps meaning "unset" after a round trip.
type timeMUS struct{}

const zeroTimeSentinel = int64(-1 << 63)

func (timeMUS) Marshal(t time.Time, bs []byte) int {
	micros := zeroTimeSentinel
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	return varint.Int64.Marshal(micros, bs)
}

func (timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || micros == zeroTimeSentinel {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func (timeMUS) Size(t time.Time) int {
	micros := zeroTimeSentinel
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	return varint.Int64.Size(micros)
}

func (timeMUS) Skip(bs []byte) (int, error) { return varint.Int64.Skip(bs) }

type stepRecordMUS struct{}

func (stepRecordMUS) Marshal(v StepRecord, bs []byte) (n int) {
	n = ord.String.Marshal(string(v.Status), bs)
	n += IDMUS.Marshal(v.JobId, bs[n:])
	n += ord.String.Marshal(v.ErrorMessage, bs[n:])
	n += timestampMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (stepRecordMUS) Unmarshal(bs []byte) (v StepRecord, n int, err error) {
	var (
		n1     int
		status string
	)
	status, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Status = StepStatus(status)
	v.JobId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timestampMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (stepRecordMUS) Size(v StepRecord) int {
	return ord.String.Size(string(v.Status)) + IDMUS.Size(v.JobId) +
		ord.String.Size(v.ErrorMessage) + timestampMUS.Size(v.UpdatedAt)
}

func (s stepRecordMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type pipelineMetadataMUS struct{}

func (pipelineMetadataMUS) Marshal(v PipelineMetadata, bs []byte) (n int) {
	n = stepRecordMUS{}.Marshal(v.Extract, bs)
	n += stepRecordMUS{}.Marshal(v.Embed, bs[n:])
	n += timestampMUS.Marshal(v.StartedAt, bs[n:])
	n += timestampMUS.Marshal(v.CompletedAt, bs[n:])
	n += timestampMUS.Marshal(v.FailedAt, bs[n:])
	return n
}

func (pipelineMetadataMUS) Unmarshal(bs []byte) (v PipelineMetadata, n int, err error) {
	var n1 int
	v.Extract, n, err = stepRecordMUS{}.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Embed, n1, err = stepRecordMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.StartedAt, n1, err = timestampMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CompletedAt, n1, err = timestampMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FailedAt, n1, err = timestampMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (pipelineMetadataMUS) Size(v PipelineMetadata) int {
	return stepRecordMUS{}.Size(v.Extract) + stepRecordMUS{}.Size(v.Embed) +
		timestampMUS.Size(v.StartedAt) + timestampMUS.Size(v.CompletedAt) +
		timestampMUS.Size(v.FailedAt)
}

func (s pipelineMetadataMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type jobMUS struct{}

func (jobMUS) Marshal(v Job, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += ord.String.Marshal(string(v.Task), bs[n:])
	n += ord.String.Marshal(string(v.Status), bs[n:])
	n += ord.String.Marshal(v.ErrorMessage, bs[n:])
	n += ord.Bool.Marshal(v.Pipeline != nil, bs[n:])
	if v.Pipeline != nil {
		n += pipelineMetadataMUS{}.Marshal(*v.Pipeline, bs[n:])
	}
	n += timestampMUS.Marshal(v.CreatedAt, bs[n:])
	n += timestampMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (jobMUS) Unmarshal(bs []byte) (v Job, n int, err error) {
	var (
		n1          int
		str         string
		hasPipeline bool
	)
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.DocumentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Task = TaskType(str)
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status = JobStatus(str)
	v.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	hasPipeline, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if hasPipeline {
		var meta PipelineMetadata
		meta, n1, err = pipelineMetadataMUS{}.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v.Pipeline = &meta
	}
	v.CreatedAt, n1, err = timestampMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timestampMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (jobMUS) Size(v Job) int {
	size := IDMUS.Size(v.Id) + IDMUS.Size(v.DocumentId) +
		ord.String.Size(string(v.Task)) + ord.String.Size(string(v.Status)) +
		ord.String.Size(v.ErrorMessage) + ord.Bool.Size(v.Pipeline != nil)
	if v.Pipeline != nil {
		size += pipelineMetadataMUS{}.Size(*v.Pipeline)
	}
	return size + timestampMUS.Size(v.CreatedAt) + timestampMUS.Size(v.UpdatedAt)
}

func (s jobMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type documentMUS struct{}

func (documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Filename, bs[n:])
	n += ord.String.Marshal(v.ChecksumSHA256, bs[n:])
	n += varint.Int.Marshal(v.TotalPages, bs[n:])
	n += timestampMUS.Marshal(v.CreatedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChecksumSHA256, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TotalPages, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = timestampMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (documentMUS) Size(v Document) int {
	return IDMUS.Size(v.Id) + ord.String.Size(v.Filename) +
		ord.String.Size(v.ChecksumSHA256) + varint.Int.Size(v.TotalPages) +
		timestampMUS.Size(v.CreatedAt)
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type documentPageMUS struct{}

func (documentPageMUS) Marshal(v DocumentPage, bs []byte) (n int) {
	n = IDMUS.Marshal(v.DocumentId, bs)
	n += varint.Int.Marshal(v.Number, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	return n
}

func (documentPageMUS) Unmarshal(bs []byte) (v DocumentPage, n int, err error) {
	var n1 int
	v.DocumentId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Number, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (documentPageMUS) Size(v DocumentPage) int {
	return IDMUS.Size(v.DocumentId) + varint.Int.Size(v.Number) + ord.String.Size(v.Text)
}

func (s documentPageMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type lineItemMUS struct{}

func (lineItemMUS) Marshal(v LineItem, bs []byte) (n int) {
	n = ord.String.Marshal(v.Description, bs)
	n += varint.Float64.Marshal(v.Quantity, bs[n:])
	n += varint.Float64.Marshal(v.UnitPrice, bs[n:])
	n += varint.Float64.Marshal(v.Total, bs[n:])
	return n
}

func (lineItemMUS) Unmarshal(bs []byte) (v LineItem, n int, err error) {
	var n1 int
	v.Description, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Quantity, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UnitPrice, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Total, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	return
}

func (lineItemMUS) Size(v LineItem) int {
	return ord.String.Size(v.Description) + varint.Float64.Size(v.Quantity) +
		varint.Float64.Size(v.UnitPrice) + varint.Float64.Size(v.Total)
}

func (s lineItemMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type featuresMUS struct{}

func (featuresMUS) Marshal(v DocumentFeatures, bs []byte) (n int) {
	n = ord.String.Marshal(v.DocumentType, bs)
	n += ord.String.Marshal(v.DateIssued, bs[n:])
	n += ord.String.Marshal(v.Issuer, bs[n:])
	n += ord.String.Marshal(v.Recipient, bs[n:])
	n += stringsMUS.Marshal(v.PartNumbers, bs[n:])
	n += varint.Float64.Marshal(v.TotalAmount, bs[n:])
	n += ord.String.Marshal(v.Currency, bs[n:])
	n += lineItemsMUS.Marshal(v.LineItems, bs[n:])
	n += ord.String.Marshal(v.Summary, bs[n:])
	n += varint.Float64.Marshal(v.Confidence, bs[n:])
	n += ord.String.Marshal(v.ExtractionNotes, bs[n:])
	return n
}

func (featuresMUS) Unmarshal(bs []byte) (v DocumentFeatures, n int, err error) {
	var n1 int
	v.DocumentType, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.DateIssued, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Issuer, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Recipient, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PartNumbers, n1, err = stringsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TotalAmount, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Currency, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.LineItems, n1, err = lineItemsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Summary, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Confidence, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ExtractionNotes, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (featuresMUS) Size(v DocumentFeatures) int {
	return ord.String.Size(v.DocumentType) + ord.String.Size(v.DateIssued) +
		ord.String.Size(v.Issuer) + ord.String.Size(v.Recipient) +
		stringsMUS.Size(v.PartNumbers) + varint.Float64.Size(v.TotalAmount) +
		ord.String.Size(v.Currency) + lineItemsMUS.Size(v.LineItems) +
		ord.String.Size(v.Summary) + varint.Float64.Size(v.Confidence) +
		ord.String.Size(v.ExtractionNotes)
}

func (s featuresMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type extractionMUS struct{}

func (extractionMUS) Marshal(v Extraction, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += featuresMUS{}.Marshal(v.Features, bs[n:])
	n += ord.String.Marshal(string(v.Review), bs[n:])
	n += timestampMUS.Marshal(v.CreatedAt, bs[n:])
	n += timestampMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (extractionMUS) Unmarshal(bs []byte) (v Extraction, n int, err error) {
	var (
		n1  int
		str string
	)
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.DocumentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Features, n1, err = featuresMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Review = ReviewStatus(str)
	v.CreatedAt, n1, err = timestampMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timestampMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (extractionMUS) Size(v Extraction) int {
	return IDMUS.Size(v.Id) + IDMUS.Size(v.DocumentId) + featuresMUS{}.Size(v.Features) +
		ord.String.Size(string(v.Review)) + timestampMUS.Size(v.CreatedAt) +
		timestampMUS.Size(v.UpdatedAt)
}

func (s extractionMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type embeddingMUS struct{}

func (embeddingMUS) Marshal(v Embedding, bs []byte) (n int) {
	n = IDMUS.Marshal(v.DocumentId, bs)
	n += ord.String.Marshal(v.ChunkId, bs[n:])
	n += varint.Int.Marshal(v.PageStart, bs[n:])
	n += varint.Int.Marshal(v.PageEnd, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	return n
}

func (embeddingMUS) Unmarshal(bs []byte) (v Embedding, n int, err error) {
	var n1 int
	v.DocumentId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.ChunkId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PageStart, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PageEnd, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (embeddingMUS) Size(v Embedding) int {
	return IDMUS.Size(v.DocumentId) + ord.String.Size(v.ChunkId) +
		varint.Int.Size(v.PageStart) + varint.Int.Size(v.PageEnd) +
		ord.String.Size(v.Content) + vectorMUS.Size(v.Vector)
}

func (s embeddingMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
