package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"completion-service/service/completion"
	"completion-service/service/config"
	"completion-service/service/distributed_lock"
	"completion-service/service/models"
	"completion-service/service/store"
	"completion-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockPublisher Mock报告发布器
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Name() string { return "mock" }

func (m *MockPublisher) Publish(ctx context.Context, s *Snapshot) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// ReportSuite 报告构建与调度测试
type ReportSuite struct {
	suite.Suite
	tdb     *testutil.TestDB
	factory *testutil.TestDataFactory
	builder *Builder
}

func (s *ReportSuite) SetupTest() {
	s.tdb = testutil.NewTestDB()
	s.factory = testutil.NewTestDataFactory(s.tdb.DB)

	gs, err := store.NewGormStore(s.tdb.DB, 5*time.Second)
	s.Require().NoError(err)
	scores, err := completion.NewScoreService(gs, completion.DefaultPolicy(), completion.DefaultBucketDefinition())
	s.Require().NoError(err)
	s.builder = NewBuilder(scores)
}

func (s *ReportSuite) TearDownTest() {
	s.tdb.Close()
}

func (s *ReportSuite) seed() {
	s.factory.CreateCompletePerson("a@example.com", testutil.WithDescription("负责园区运维"))
	s.factory.CreatePerson(testutil.WithEmail("b@example.com"))
	s.factory.CreatePerson(testutil.WithEmail("c@example.com"), testutil.WithPhotoID(12))
	s.factory.CreatePerson()
}

func (s *ReportSuite) TestBuild() {
	s.seed()

	snapshot, err := s.builder.Build(context.Background())
	s.Require().NoError(err)

	s.NotEmpty(snapshot.ID)
	s.Equal(int64(4), snapshot.Total)
	s.Equal(0.5, snapshot.WithPhotos)
	s.Equal(0.25, snapshot.WithAdditionalInfo)
	// 100 + 11.11 + 22.22 + 0
	s.Equal(33.33, snapshot.AverageScore)
	s.Equal(int64(4), snapshot.Distribution.Total())
	s.Equal(int64(3), snapshot.Distribution["[0,19]"]+snapshot.Distribution["[20,49]"])
	s.Equal(int64(1), snapshot.Distribution["[80,100]"])
}

func (s *ReportSuite) TestBuild_AdditionalInfoFromEitherColumn() {
	s.factory.CreatePerson(testutil.WithPhoto("a.png"), testutil.WithField("current_project", testutil.Str("园区改造")))
	s.factory.CreatePerson(testutil.WithPhoto("b.png"))
	s.factory.CreatePerson(testutil.WithDescription("负责园区运维"))

	snapshot, err := s.builder.Build(context.Background())
	s.Require().NoError(err)

	s.Equal(int64(3), snapshot.Total)
	s.Equal(0.67, snapshot.WithPhotos)
	s.Equal(0.67, snapshot.WithAdditionalInfo, "简介或当前项目任一有值即计入")
}

func (s *ReportSuite) TestBuild_EmptyDirectory() {
	snapshot, err := s.builder.Build(context.Background())
	s.Require().NoError(err)

	s.Zero(snapshot.Total)
	s.Zero(snapshot.WithPhotos)
	s.Zero(snapshot.AverageScore)
	s.Len(snapshot.Distribution, 4)
}

func (s *ReportSuite) TestRunOnce_PersistsAndPublishes() {
	s.seed()
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("*report.Snapshot")).Return(nil)
	scheduler := NewScheduler(s.builder, publisher, s.tdb.DB, time.Minute)

	snapshot, err := scheduler.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(snapshot, scheduler.Last())
	publisher.AssertNumberOfCalls(s.T(), "Publish", 1)

	var stored models.CompletionReport
	s.Require().NoError(s.tdb.DB.First(&stored, "id = ?", snapshot.ID).Error)
	s.Equal(snapshot.Total, stored.Total)
	s.Equal(snapshot.AverageScore, stored.AverageScore)
	s.Equal("mock", stored.Publisher)
	s.EqualValues(1, stored.Distribution["[80,100]"])
}

func (s *ReportSuite) TestRunOnce_PublishFailure() {
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))
	scheduler := NewScheduler(s.builder, publisher, nil, time.Minute)

	snapshot, err := scheduler.RunOnce(context.Background())
	s.Error(err)
	s.NotNil(snapshot)
	s.Nil(scheduler.Last(), "发布失败时不更新最近报告")
}

func (s *ReportSuite) TestStartAndStop() {
	publisher := new(MockPublisher)
	publisher.On("Close").Return(nil)
	scheduler := NewScheduler(s.builder, publisher, nil, time.Minute)

	s.Error(scheduler.Start("not a cron"))
	s.Require().NoError(scheduler.Start("0 0 * * * *"))
	s.Error(scheduler.Start("0 0 * * * *"), "重复启动应返回错误")

	scheduler.Stop()
	publisher.AssertCalled(s.T(), "Close")
}

// gatedStore 查询在 release 关闭前阻塞，用于模拟执行中的报告任务
type gatedStore struct {
	completion.RecordStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.RecordStore.Query(ctx, query, args...)
}

func (s *ReportSuite) TestStop_WaitsForRunningJob() {
	s.seed()
	gs, err := store.NewGormStore(s.tdb.DB, 5*time.Second)
	s.Require().NoError(err)
	gated := &gatedStore{RecordStore: gs, entered: make(chan struct{}), release: make(chan struct{})}
	scores, err := completion.NewScoreService(gated, completion.DefaultPolicy(), completion.DefaultBucketDefinition())
	s.Require().NoError(err)

	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	publisher.On("Close").Return(nil)
	scheduler := NewScheduler(NewBuilder(scores), publisher, nil, time.Minute)
	s.Require().NoError(scheduler.Start("* * * * * *"))

	select {
	case <-gated.entered:
	case <-time.After(5 * time.Second):
		s.FailNow("定时任务未触发")
	}

	stopped := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(stopped)
	}()

	time.Sleep(200 * time.Millisecond)
	select {
	case <-stopped:
		s.FailNow("任务仍在执行时 Stop 不应返回")
	default:
	}
	close(gated.release)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		s.FailNow("任务结束后 Stop 未返回")
	}
	s.NotNil(scheduler.Last(), "停止前执行中的任务应完成发布")
	publisher.AssertCalled(s.T(), "Close")
}

// stubLock 固定返回是否取得锁
type stubLock struct {
	acquired bool
	unlocked int
}

func (l *stubLock) TryLock(context.Context, string, time.Duration) (bool, error) {
	return l.acquired, nil
}

func (l *stubLock) Unlock(context.Context, string) error {
	l.unlocked++
	return nil
}

func (s *ReportSuite) TestRunScheduled_WithLock() {
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	scheduler := NewScheduler(s.builder, publisher, nil, time.Minute)

	held := &stubLock{acquired: false}
	scheduler.SetLockExecutor(distributed_lock.NewLockExecutor(held))
	s.Require().NoError(scheduler.runScheduled(context.Background()))
	publisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
	s.Nil(scheduler.Last())

	free := &stubLock{acquired: true}
	scheduler.SetLockExecutor(distributed_lock.NewLockExecutor(free))
	s.Require().NoError(scheduler.runScheduled(context.Background()))
	publisher.AssertNumberOfCalls(s.T(), "Publish", 1)
	s.Equal(1, free.unlocked)
	s.NotNil(scheduler.Last())
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportSuite))
}

func TestNewPublisher(t *testing.T) {
	p, err := NewPublisher(config.ReportConfig{Publisher: config.PublisherLog})
	require.NoError(t, err)
	assert.Equal(t, config.PublisherLog, p.Name())
	assert.NoError(t, p.Publish(context.Background(), &Snapshot{ID: "r1"}))

	p, err = NewPublisher(config.ReportConfig{Publisher: config.PublisherKafka, KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "completion-report"})
	require.NoError(t, err)
	assert.Equal(t, config.PublisherKafka, p.Name())
	assert.NoError(t, p.Close())

	_, err = NewPublisher(config.ReportConfig{Publisher: "smtp"})
	assert.Error(t, err)
}
