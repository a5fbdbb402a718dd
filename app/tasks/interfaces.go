package tasks

// TaskSchedulerInterface is what the HTTP layer and main need from the
// background scheduler.
//
//	scheduler := NewScheduler(catalog, topicRepo, articleRepo, httpClient, parser, filterer, contentExtractor, summarizer)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.RefreshTopics()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	RefreshTopics() int
}
