package collector

import (
	"context"
	"sort"
	"sync"
	"time"

	gh "github.com/google/go-github/v57/github"

	ghclient "prstats/internal/github"
	"prstats/internal/models"
	"prstats/pkg/logger"
)

// DefaultMaxWorkers bounds repository fetch parallelism when the
// caller does not set a value.
const DefaultMaxWorkers = 4

// Collector fetches pull request data for a set of repositories and
// assembles the domain model the statistics engine works on.
type Collector struct {
	client     ghclient.Client
	maxWorkers int
}

// New creates a collector. maxWorkers values below one fall back to
// the default.
func New(client ghclient.Client, maxWorkers int) *Collector {
	if maxWorkers < 1 {
		maxWorkers = DefaultMaxWorkers
	}
	return &Collector{client: client, maxWorkers: maxWorkers}
}

// Collect gathers fully populated pull requests for every repository,
// keeping only PRs created inside the inclusive [since, until] window.
// Repositories are fetched concurrently, bounded by maxWorkers.
func (c *Collector) Collect(ctx context.Context, repositories []string, since, until *time.Time) ([]models.PullRequest, error) {
	type repoResult struct {
		prs []models.PullRequest
		err error
	}

	jobs := make(chan string)
	results := make(chan repoResult, len(repositories))

	var wg sync.WaitGroup
	for i := 0; i < c.maxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for repo := range jobs {
				prs, err := c.collectRepository(ctx, repo, since, until)
				results <- repoResult{prs: prs, err: err}
			}
		}()
	}

	for _, repo := range repositories {
		jobs <- repo
	}
	close(jobs)
	wg.Wait()
	close(results)

	var all []models.PullRequest
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		all = append(all, res.prs...)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Repository != all[j].Repository {
			return all[i].Repository < all[j].Repository
		}
		return all[i].Number < all[j].Number
	})
	return all, nil
}

func (c *Collector) collectRepository(ctx context.Context, repoFullName string, since, until *time.Time) ([]models.PullRequest, error) {
	owner, repo, err := ghclient.ParseRepoFullName(repoFullName)
	if err != nil {
		return nil, err
	}

	listed, err := c.client.ListPullRequests(ctx, owner, repo, since, until)
	if err != nil {
		return nil, err
	}
	logger.WithField("repository", repoFullName).Infof("collected %d pull requests", len(listed))

	prs := make([]models.PullRequest, 0, len(listed))
	for _, item := range listed {
		pr, err := c.collectPullRequest(ctx, owner, repo, repoFullName, item)
		if err != nil {
			return nil, err
		}
		prs = append(prs, pr)
	}
	return prs, nil
}

func (c *Collector) collectPullRequest(ctx context.Context, owner, repo, repoFullName string, listed *gh.PullRequest) (models.PullRequest, error) {
	number := listed.GetNumber()

	details, err := c.client.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		return models.PullRequest{}, err
	}
	if details == nil {
		details = listed
	}

	pr := models.PullRequest{
		Number:     number,
		Title:      details.GetTitle(),
		Author:     details.GetUser().GetLogin(),
		CreatedAt:  details.GetCreatedAt().Time,
		State:      details.GetState(),
		Additions:  details.GetAdditions(),
		Deletions:  details.GetDeletions(),
		Repository: repoFullName,
	}
	if closedAt := details.ClosedAt; closedAt != nil {
		t := closedAt.Time
		pr.ClosedAt = &t
	}
	if mergedAt := details.MergedAt; mergedAt != nil {
		t := mergedAt.Time
		pr.MergedAt = &t
	}

	// The detail endpoint occasionally omits line counts; the file list
	// carries them per file.
	if pr.Additions == 0 && pr.Deletions == 0 {
		files, err := c.client.ListPullRequestFiles(ctx, owner, repo, number)
		if err != nil {
			return models.PullRequest{}, err
		}
		for _, f := range files {
			pr.Additions += f.GetAdditions()
			pr.Deletions += f.GetDeletions()
		}
	}

	commits, err := c.client.ListPullRequestCommits(ctx, owner, repo, number)
	if err != nil {
		return models.PullRequest{}, err
	}
	for _, rc := range commits {
		pr.Commits = append(pr.Commits, models.CommitInfo{
			SHA:         rc.GetSHA(),
			Author:      commitAuthor(rc),
			CommittedAt: rc.GetCommit().GetAuthor().GetDate().Time,
			Message:     rc.GetCommit().GetMessage(),
		})
	}

	reviews, err := c.client.ListPullRequestReviews(ctx, owner, repo, number)
	if err != nil {
		return models.PullRequest{}, err
	}
	for _, r := range reviews {
		// PENDING reviews have no submission timestamp and carry no
		// signal for review timing, so they are dropped here.
		if r.SubmittedAt == nil {
			continue
		}
		pr.Reviews = append(pr.Reviews, models.ReviewEvent{
			Reviewer:    r.GetUser().GetLogin(),
			SubmittedAt: r.GetSubmittedAt().Time,
			State:       r.GetState(),
		})
	}

	comments, err := c.collectComments(ctx, owner, repo, number)
	if err != nil {
		return models.PullRequest{}, err
	}
	pr.Comments = comments

	timeline, err := c.client.ListIssueTimeline(ctx, owner, repo, number)
	if err != nil {
		return models.PullRequest{}, err
	}
	applyTimeline(&pr, timeline)

	return pr, nil
}

// collectComments merges review comments and issue comments into one
// list ordered by creation time.
func (c *Collector) collectComments(ctx context.Context, owner, repo string, number int) ([]models.CommentInfo, error) {
	reviewComments, err := c.client.ListPullRequestComments(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}
	issueComments, err := c.client.ListIssueComments(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}

	comments := make([]models.CommentInfo, 0, len(reviewComments)+len(issueComments))
	for _, rc := range reviewComments {
		comments = append(comments, models.CommentInfo{
			Author:    rc.GetUser().GetLogin(),
			CreatedAt: rc.GetCreatedAt().Time,
			Body:      rc.GetBody(),
		})
	}
	for _, ic := range issueComments {
		comments = append(comments, models.CommentInfo{
			Author:    ic.GetUser().GetLogin(),
			CreatedAt: ic.GetCreatedAt().Time,
			Body:      ic.GetBody(),
		})
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// applyTimeline extracts review request events and the earliest
// ready-for-review timestamp from issue timeline events.
func applyTimeline(pr *models.PullRequest, timeline []*gh.Timeline) {
	for _, ev := range timeline {
		switch ev.GetEvent() {
		case "review_requested":
			reviewer := ev.GetReviewer().GetLogin()
			if reviewer == "" || ev.CreatedAt == nil {
				continue
			}
			pr.ReviewRequests = append(pr.ReviewRequests, models.ReviewRequestEvent{
				RequestedReviewer: reviewer,
				RequestedAt:       ev.GetCreatedAt().Time,
			})
		case "ready_for_review":
			if ev.CreatedAt == nil {
				continue
			}
			t := ev.GetCreatedAt().Time
			if pr.ReadyForReviewAt == nil || t.Before(*pr.ReadyForReviewAt) {
				pr.ReadyForReviewAt = &t
			}
		}
	}
}

func commitAuthor(rc *gh.RepositoryCommit) string {
	// Prefer the GitHub login, fall back to the git author name.
	if login := rc.GetAuthor().GetLogin(); login != "" {
		return login
	}
	return rc.GetCommit().GetAuthor().GetName()
}
