package ingest

// discoverLinks feeds article links found during extraction back into the
// queue. The store's dedup ensures already-known URLs are skipped.
func (s *Service) discoverLinks(sourceURL string, links []string) {
	created := s.store.Enqueue(links)
	if len(created) == 0 {
		return
	}

	s.logger.Info().
		Str("source", sourceURL).
		Int("discovered", len(links)).
		Int("enqueued", len(created)).
		Msg("Discovered links enqueued")

	s.publishQueueChanged()
	s.sched.Kick()
}
