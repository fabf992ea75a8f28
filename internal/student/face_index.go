package student

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"
)

const faceIndexMaxNeighbors = 16

// FaceIndex is an in-memory HNSW index over registered face embeddings,
// keyed by student ID. It backs the duplicate-enrollment guard: before a new
// template is accepted, the nearest registered face is checked so one person
// cannot enroll under two matric numbers. Each backend gets its own graph —
// embeddings from different models live in different spaces (and different
// dimensions), so a cosine distance is only meaningful inside one backend's
// partition. The index is rebuilt from the students table at startup.
type FaceIndex struct {
	graphs     map[string]*hnsw.Graph[string]
	embeddings map[string]map[string][]float32 // backend -> student ID -> embedding
	dims       map[string]int
	students   map[string]struct{}
	mu         sync.RWMutex
}

func NewFaceIndex() *FaceIndex {
	return &FaceIndex{
		graphs:     make(map[string]*hnsw.Graph[string]),
		embeddings: make(map[string]map[string][]float32),
		dims:       make(map[string]int),
		students:   make(map[string]struct{}),
	}
}

func newFaceGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = faceIndexMaxNeighbors
	g.Ml = 1.0 / float64(faceIndexMaxNeighbors)
	g.Distance = hnsw.CosineDistance
	return g
}

// BuildFromStudents replaces the index contents with the registered students'
// per-backend embeddings.
func (f *FaceIndex) BuildFromStudents(students []Student) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.graphs = make(map[string]*hnsw.Graph[string])
	f.embeddings = make(map[string]map[string][]float32)
	f.dims = make(map[string]int)
	f.students = make(map[string]struct{}, len(students))

	for i := range students {
		f.addLocked(students[i].ID.String(), IndexableEmbeddings(&students[i]))
	}
}

// Add inserts or replaces a single student's embeddings across all backend
// partitions they carry.
func (f *FaceIndex) Add(studentID string, embeddings map[string][]float32) {
	if len(embeddings) == 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.addLocked(studentID, embeddings)
}

func (f *FaceIndex) addLocked(studentID string, embeddings map[string][]float32) {
	added := false
	for backend, emb := range embeddings {
		if len(emb) == 0 {
			continue
		}
		// The first embedding seen fixes the partition's dimension; a row
		// with a stale template from a differently-sized model is skipped
		// rather than corrupting the graph.
		if dim, ok := f.dims[backend]; ok && dim != len(emb) {
			continue
		}

		g, ok := f.graphs[backend]
		if !ok {
			g = newFaceGraph()
			f.graphs[backend] = g
			f.embeddings[backend] = make(map[string][]float32)
			f.dims[backend] = len(emb)
		}
		g.Add(hnsw.MakeNode(studentID, emb))
		f.embeddings[backend][studentID] = emb
		added = true
	}
	if added {
		f.students[studentID] = struct{}{}
	}
}

// Remove drops a student from lookup. The HNSW graphs keep the node, so
// results are filtered through the embeddings maps instead.
func (f *FaceIndex) Remove(studentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.students, studentID)
	for _, byID := range f.embeddings {
		delete(byID, studentID)
	}
}

// Nearest returns the closest indexed student within one backend's partition
// and the cosine distance to it.
func (f *FaceIndex) Nearest(backend string, query []float32) (string, float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	g, ok := f.graphs[backend]
	if !ok {
		return "", 0, errors.New("no indexed faces for backend")
	}
	if dim := f.dims[backend]; dim != len(query) {
		return "", 0, errors.New("query dimension mismatch")
	}

	neighbors := g.Search(query, faceIndexMaxNeighbors)
	for _, n := range neighbors {
		emb, ok := f.embeddings[backend][n.Key]
		if !ok {
			continue
		}
		return n.Key, float64(hnsw.CosineDistance(query, emb)), nil
	}

	return "", 0, errors.New("no indexed faces for backend")
}

// Count reports how many students have at least one indexed embedding.
func (f *FaceIndex) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.students)
}

// IndexableEmbeddings collects every embedding the index should hold for a
// student: the full advanced map, plus the legacy vector under its backend
// key when no advanced entry already covers it.
func IndexableEmbeddings(s *Student) map[string][]float32 {
	out := make(map[string][]float32, len(s.AdvancedEmbeddings)+1)
	for backend, emb := range s.AdvancedEmbeddings {
		if len(emb) > 0 {
			out[backend] = emb
		}
	}
	if s.LegacyEmbedding != nil && s.LegacyBackend != "" {
		if _, ok := out[s.LegacyBackend]; !ok {
			if slice := s.LegacyEmbedding.Slice(); len(slice) > 0 {
				out[s.LegacyBackend] = slice
			}
		}
	}
	return out
}
