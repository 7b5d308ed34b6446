package infrastructure

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRecordAsset(uid, locale string) domain.Asset {
	return domain.Asset{UID: uid, Locale: locale, Filename: "logo.png", URL: "https://host/" + uid}
}

func TestSave_UpsertsOnUIDAndLocale(t *testing.T) {
	repo := setupTestRepo(t)
	asset := testRecordAsset("u1", "en-us")

	first := domain.NewAssetRecord(asset)
	first.MarkDownloading()
	require.NoError(t, repo.Save(first))

	// a second record for the same key replaces the state of the first
	second := domain.NewAssetRecord(asset)
	asset.InternalURL = "en-us/u1/logo.png"
	second.MarkStored(asset, "/data/en-us/u1/logo.png", 42)
	require.NoError(t, repo.Save(second))

	found, err := repo.FindByKey("u1", "en-us")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, domain.AssetStored, found.Status)
	assert.Equal(t, int64(42), found.Bytes)
	assert.Equal(t, "en-us/u1/logo.png", found.InternalURL)
	assert.NotNil(t, found.StoredAt)

	all, err := repo.FindAll(nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFindByKey_ReturnsNilWhenNoMatch(t *testing.T) {
	repo := setupTestRepo(t)

	found, err := repo.FindByKey("missing", "en-us")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindByKey_SeparatesLocales(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.Save(domain.NewAssetRecord(testRecordAsset("u1", "en-us"))))
	es := domain.NewAssetRecord(testRecordAsset("u1", "es-es"))
	es.MarkFailed(errors.New("404"))
	require.NoError(t, repo.Save(es))

	found, err := repo.FindByKey("u1", "es-es")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, domain.AssetFailed, found.Status)

	found, err = repo.FindByKey("u1", "en-us")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetPending, found.Status)
}

func TestFindAll_Filters(t *testing.T) {
	repo := setupTestRepo(t)
	for _, uid := range []string{"a", "b", "c"} {
		record := domain.NewAssetRecord(testRecordAsset(uid, "en-us"))
		if uid != "c" {
			record.MarkStored(testRecordAsset(uid, "en-us"), "/data/"+uid, 10)
		}
		require.NoError(t, repo.Save(record))
	}

	stored, err := repo.FindAll(map[string]interface{}{"status": string(domain.AssetStored)})
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	byUID, err := repo.FindAll(map[string]interface{}{"uid": "c", "locale": "en-us"})
	require.NoError(t, err)
	require.Len(t, byUID, 1)
	assert.Equal(t, domain.AssetPending, byUID[0].Status)

	_, err = repo.FindAll(map[string]interface{}{"1=1; DROP TABLE asset_records; --": "x"})
	assert.Error(t, err)
}

func TestGetStats(t *testing.T) {
	repo := setupTestRepo(t)

	empty, err := repo.GetStats()
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.StoredBytes)

	a := domain.NewAssetRecord(testRecordAsset("a", "en-us"))
	a.MarkStored(testRecordAsset("a", "en-us"), "/data/a", 100)
	b := domain.NewAssetRecord(testRecordAsset("b", "en-us"))
	b.MarkStored(testRecordAsset("b", "en-us"), "/data/b", 50)
	c := domain.NewAssetRecord(testRecordAsset("c", "en-us"))
	c.MarkAbsent()
	d := domain.NewAssetRecord(testRecordAsset("d", "en-us"))
	d.MarkFailed(errors.New("timeout"))
	for _, r := range []*domain.AssetRecord{a, b, c, d} {
		require.NoError(t, repo.Save(r))
	}

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.Stored)
	assert.Equal(t, int64(1), stats.Absent)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(150), stats.StoredBytes)
}

func TestJobs_CreateFindUpdate(t *testing.T) {
	repo := setupTestRepo(t)

	job, err := domain.NewJob(domain.ActionDownload, []domain.Asset{testRecordAsset("u1", "en-us")})
	require.NoError(t, err)
	require.NoError(t, repo.CreateJob(job))

	found, err := repo.FindJobByID(job.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assets, err := found.Assets()
	require.NoError(t, err)
	assert.Equal(t, "u1", assets[0].UID)

	found.MarkProcessing()
	require.NoError(t, repo.UpdateJob(found))
	result := testRecordAsset("u1", "en-us")
	found.MarkCompleted(&result)
	require.NoError(t, repo.UpdateJob(found))

	again, err := repo.FindJobByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, again.Status)
	assert.NotEmpty(t, again.Result)

	missing, err := repo.FindJobByID("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindQueuedJobs_OrderedByCreation(t *testing.T) {
	repo := setupTestRepo(t)

	var ids []string
	base := time.Now().Add(-time.Minute)
	for i, uid := range []string{"a", "b", "c"} {
		job, err := domain.NewJob(domain.ActionDownload, []domain.Asset{testRecordAsset(uid, "en-us")})
		require.NoError(t, err)
		job.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.CreateJob(job))
		ids = append(ids, job.ID)
	}

	done, err := repo.FindJobByID(ids[1])
	require.NoError(t, err)
	done.MarkFailed(errors.New("boom"))
	require.NoError(t, repo.UpdateJob(done))

	queued, err := repo.FindQueuedJobs()
	require.NoError(t, err)
	require.Len(t, queued, 2)
	assert.Equal(t, ids[0], queued[0].ID)
	assert.Equal(t, ids[2], queued[1].ID)
}

func TestFindJobs_Filters(t *testing.T) {
	repo := setupTestRepo(t)
	download, _ := domain.NewJob(domain.ActionDownload, []domain.Asset{testRecordAsset("u1", "en-us")})
	unpublish, _ := domain.NewJob(domain.ActionUnpublish, []domain.Asset{testRecordAsset("u1", "en-us")})
	other, _ := domain.NewJob(domain.ActionDownload, []domain.Asset{testRecordAsset("u2", "en-us")})
	for _, j := range []*domain.Job{download, unpublish, other} {
		require.NoError(t, repo.CreateJob(j))
	}

	jobs, err := repo.FindJobs(map[string]interface{}{"asset_key": "en-us/u1"})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	jobs, err = repo.FindJobs(map[string]interface{}{"asset_key": "en-us/u1", "action": "download"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, download.ID, jobs[0].ID)

	_, err = repo.FindJobs(map[string]interface{}{"payload": "x"})
	assert.Error(t, err)
}

func TestResetOrphanedJobs(t *testing.T) {
	repo := setupTestRepo(t)

	job, _ := domain.NewJob(domain.ActionDownload, []domain.Asset{testRecordAsset("u1", "en-us")})
	job.MarkProcessing()
	require.NoError(t, repo.CreateJob(job))
	queued, _ := domain.NewJob(domain.ActionDownload, []domain.Asset{testRecordAsset("u2", "en-us")})
	require.NoError(t, repo.CreateJob(queued))

	n, err := repo.ResetOrphanedJobs()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := repo.FindJobByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobQueued, found.Status)
	assert.Nil(t, found.StartedAt)
}
