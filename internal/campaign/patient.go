package campaign

import (
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

// patient is one arrival. It exists until its terminal record is appended.
type patient struct {
	id      string
	day     int
	cohort  int
	arrival float64
}

// arrive runs the admission decision. Balking is decided once, on sight of
// full stations, before the patient ever joins the queue.
func (s *simulation) arrive(p *patient) {
	if s.pool.Full() && s.gen.Balks(s.sc.BalkProbability) {
		s.record(p, models.OutcomeRescheduled, s.pool.QueueLength(), 0, 0)
		return
	}
	s.pool.Request(func() { s.serve(p) })
}

func (s *simulation) serve(p *patient) {
	wait := s.eng.Now() - p.arrival
	service := s.gen.ServiceDuration(s.sc.ServiceTimeMeanMinutes)
	s.eng.Schedule(service, "departure", func() { s.depart(p, wait) })
}

// depart reads the queue while the station is still held, then hands it on
func (s *simulation) depart(p *patient, wait float64) {
	queue := s.pool.QueueLength()
	s.pool.Release()
	s.record(p, models.OutcomeVaccinated, queue, wait, s.eng.Now()-p.arrival)
	s.stop.Increment()
}

func (s *simulation) record(p *patient, outcome models.Outcome, queue int, wait, sojourn float64) {
	s.log.Append(models.EventRecord{
		Time:           s.eng.Now(),
		Day:            p.day,
		PatientID:      p.id,
		Cohort:         p.cohort,
		Outcome:        outcome,
		QueueLength:    queue,
		WaitMinutes:    wait,
		SojournMinutes: sojourn,
	})
}
