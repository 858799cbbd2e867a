package decorate

import (
	"sort"

	"github.com/zjrosen/mdlive/internal/log"
)

// accumulator collects candidate instructions, keeping them sorted by From
// and rejecting any that would overlap one already accepted.
type accumulator struct {
	out     []Instruction
	dropped int
}

func (a *accumulator) add(in Instruction) bool {
	if in.From >= in.To {
		a.dropped++
		log.Debug(log.CatDecorate, "dropping empty decoration", "from", in.From, "to", in.To)
		return false
	}

	i := sort.Search(len(a.out), func(i int) bool { return a.out[i].From >= in.From })
	if i > 0 && a.out[i-1].To > in.From {
		a.reject(in, a.out[i-1])
		return false
	}
	if i < len(a.out) && a.out[i].From < in.To {
		a.reject(in, a.out[i])
		return false
	}

	a.out = append(a.out, Instruction{})
	copy(a.out[i+1:], a.out[i:])
	a.out[i] = in
	return true
}

func (a *accumulator) reject(in, existing Instruction) {
	a.dropped++
	log.Debug(log.CatDecorate, "dropping overlapping decoration",
		"candidate", in.String(), "existing", existing.String())
}

func (a *accumulator) conceal(from, to int) bool {
	return a.add(Instruction{From: from, To: to, Op: OpConceal})
}

func (a *accumulator) instructions() []Instruction {
	return a.out
}
