package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/paperbridge/core"
)

// Key prefixes for different data types
const (
	jobRecordPrefix     = "jobrec"
	jobDocTaskPrefix    = "jobdoc"
	jobIDSeq            = "jobrecseq"
	docRecordPrefix     = "docrec"
	docChecksumPrefix   = "docsum"
	docIDSeq            = "docrecseq"
	pageRecordPrefix    = "pagrec"
	extRecordPrefix     = "extrec"
	extDocPrefix        = "extdoc"
	extIDSeq            = "extrecseq"
	embRecordPrefix     = "embrec"
)

// Task type bytes for composite keys. Job task types sort within a
// document's index entries by this byte.
func taskByte(task core.TaskType) byte {
	switch task {
	case core.TaskExtract:
		return 1
	case core.TaskEmbed:
		return 2
	case core.TaskPipeline:
		return 3
	default:
		return 0
	}
}

// makeJobKey generates a key for a job record by ID.
func makeJobKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", jobRecordPrefix, id))
}

// makeJobDocTaskKey generates a composite key for the (document, task) index.
// Format: prefix:documentID:task:createdAt:jobID
func makeJobDocTaskKey(documentID core.ID, task core.TaskType, createdAt time.Time, jobID core.ID) []byte {
	prefix := jobDocTaskPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 + 1 + 16 // documentID + task byte + timestamp + jobID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	buf[offset] = taskByte(task)
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(jobID))
	return buf
}

// makePartialJobDocTaskKey generates the index prefix for one (document, task) pair.
func makePartialJobDocTaskKey(documentID core.ID, task core.TaskType) []byte {
	prefix := jobDocTaskPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 9 // documentID + task byte
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	buf[offset] = taskByte(task)
	return buf
}

// makeDocumentKey generates a key for a document record by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", docRecordPrefix, id))
}

// makeDocChecksumKey generates a key for the checksum index.
func makeDocChecksumKey(checksum string) []byte {
	return []byte(fmt.Sprintf("%s:%s", docChecksumPrefix, checksum))
}

// makePageKey generates a composite key for one page of a document.
// Format: prefix:documentID:number
func makePageKey(documentID core.ID, number int) []byte {
	prefix := pageRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 12 // documentID + page number
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint32(buf[offset:], uint32(number))
	return buf
}

// makePartialPageKey generates the page prefix for one document.
func makePartialPageKey(documentID core.ID) []byte {
	prefix := pageRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeExtractionKey generates a key for an extraction record by ID.
func makeExtractionKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", extRecordPrefix, id))
}

// makeExtractionDocKey generates a composite key for the per-document
// extraction index. Format: prefix:documentID:createdAt:extractionID
func makeExtractionDocKey(documentID core.ID, createdAt time.Time, extractionID core.ID) []byte {
	prefix := extDocPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 24
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(extractionID))
	return buf
}

// makePartialExtractionDocKey generates the extraction index prefix for a document.
func makePartialExtractionDocKey(documentID core.ID) []byte {
	prefix := extDocPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeEmbeddingKey generates a composite key for one embedded chunk.
// Format: prefix:documentID:chunkID
func makeEmbeddingKey(documentID core.ID, chunkID string) []byte {
	prefix := embRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 + len(chunkID)
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	copy(buf[offset:], []byte(chunkID))
	return buf
}

// makePartialEmbeddingKey generates the embedding prefix for one document.
func makePartialEmbeddingKey(documentID core.ID) []byte {
	prefix := embRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}
