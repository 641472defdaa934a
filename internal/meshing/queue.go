package meshing

import "chunkbake/internal/world"

type task struct {
	snap      *Snapshot
	priority  world.MeshPriority
	fluidOnly bool
	seq       uint64
}

type pushResult uint8

const (
	pushInserted  pushResult = iota // new task
	pushCoalesced                   // merged in place, position kept
	pushUpgraded                    // merged and moved forward
)

// taskQueue keeps at most one task per chunk, sorted by priority with FIFO
// order among equal priorities. Not safe for concurrent use.
type taskQueue struct {
	tasks []*task
	seq   uint64
}

func (q *taskQueue) push(snap *Snapshot, priority world.MeshPriority, fluidOnly bool) pushResult {
	result := pushInserted
	for i, t := range q.tasks {
		if t.snap.coord != snap.coord {
			continue
		}
		if t.priority <= priority {
			t.snap = snap
			t.fluidOnly = t.fluidOnly && fluidOnly
			return pushCoalesced
		}
		// More urgent now: pull it out and insert again further ahead.
		fluidOnly = fluidOnly && t.fluidOnly
		q.tasks = append(q.tasks[:i], q.tasks[i+1:]...)
		result = pushUpgraded
		break
	}

	q.seq++
	nt := &task{snap: snap, priority: priority, fluidOnly: fluidOnly, seq: q.seq}
	at := len(q.tasks)
	for i, t := range q.tasks {
		if t.priority > priority {
			at = i
			break
		}
	}
	q.tasks = append(q.tasks, nil)
	copy(q.tasks[at+1:], q.tasks[at:])
	q.tasks[at] = nt
	return result
}

func (q *taskQueue) pop() *task {
	if len(q.tasks) == 0 {
		return nil
	}
	t := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return t
}

func (q *taskQueue) find(coord world.ChunkCoord) *task {
	for _, t := range q.tasks {
		if t.snap.coord == coord {
			return t
		}
	}
	return nil
}

func (q *taskQueue) len() int { return len(q.tasks) }

func (q *taskQueue) clear() {
	clear(q.tasks)
	q.tasks = q.tasks[:0]
}
