package store

import "sync"

// rwGate is the readers-writer discipline from the data model: many concurrent
// readers or one exclusive writer, built from two mutexes plus a reader count rather
// than sync.RWMutex, because this exact construction is writer-starvable under a
// continuous stream of readers — an explicitly accepted, testable property of the
// store (see DESIGN.md). sync.RWMutex does not have that property: Go blocks new
// readers once a writer is waiting, which would silently change the store's behavior.
type rwGate struct {
	countLock  sync.Mutex
	writerLock sync.Mutex
	readers    int
}

func (g *rwGate) enterRead() {
	g.countLock.Lock()
	if g.readers == 0 {
		g.writerLock.Lock()
	}
	g.readers++
	g.countLock.Unlock()
}

func (g *rwGate) exitRead() {
	g.countLock.Lock()
	g.readers--
	if g.readers == 0 {
		g.writerLock.Unlock()
	}
	g.countLock.Unlock()
}

func (g *rwGate) enterWrite() {
	g.writerLock.Lock()
}

func (g *rwGate) exitWrite() {
	g.writerLock.Unlock()
}
