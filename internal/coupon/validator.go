// Package coupon validates coupon codes against the injected policy table
// and, optionally, bulk campaign code files. Campaign files can hold millions
// of generated single-use codes, so each set carries a bloom filter in front
// of the exact membership map to keep negative lookups cheap.
package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/tatylu/storefront/internal/pricing"
)

const bloomFalsePositiveRate = 0.01

// Validator resolves coupon codes to their discount percentage. Lookup is
// case-sensitive and exact; unknown codes are simply worth nothing.
type Validator struct {
	mu        sync.RWMutex
	table     map[string]float64
	campaigns []*campaign
}

// campaign is one loaded bulk code file and the percent it grants.
type campaign struct {
	path    string
	percent float64
	filter  *bloom.BloomFilter
	codes   map[string]struct{}
}

// campaignLoadResult holds the result of loading a single campaign file.
type campaignLoadResult struct {
	index    int
	campaign *campaign
	err      error
}

// NewValidator creates a validator over the policy's fixed coupon table.
func NewValidator(table map[string]float64) *Validator {
	copied := make(map[string]float64, len(table))
	for code, percent := range table {
		copied[code] = percent
	}
	return &Validator{table: copied}
}

// LoadCampaignFiles loads bulk code files concurrently. Files ending in .gz
// are transparently decompressed. Returns an error if any file fails to load.
func (v *Validator) LoadCampaignFiles(ctx context.Context, files []pricing.CampaignFile) error {
	if len(files) == 0 {
		return nil
	}

	resultChan := make(chan campaignLoadResult, len(files))

	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(index int, file pricing.CampaignFile) {
			defer wg.Done()

			c, err := loadCampaign(ctx, file)
			resultChan <- campaignLoadResult{index: index, campaign: c, err: err}
		}(i, f)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]campaignLoadResult, len(files))
	for result := range resultChan {
		results[result.index] = result
	}

	for i, result := range results {
		if result.err != nil {
			return fmt.Errorf("failed to load campaign file %d: %w", i+1, result.err)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.campaigns = make([]*campaign, len(results))
	for i, result := range results {
		v.campaigns[i] = result.campaign
	}

	return nil
}

// loadCampaign reads one campaign file into an exact set plus bloom filter.
func loadCampaign(ctx context.Context, file pricing.CampaignFile) (*campaign, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open campaign file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(file.Path, ".gz") {
		gzReader, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		r = gzReader
	}

	codes, err := parseCodes(ctx, r)
	if err != nil {
		return nil, err
	}

	n := uint(len(codes))
	if n == 0 {
		n = 1
	}
	filter := bloom.NewWithEstimates(n, bloomFalsePositiveRate)
	for code := range codes {
		filter.AddString(code)
	}

	return &campaign{
		path:    file.Path,
		percent: file.Percent,
		filter:  filter,
		codes:   codes,
	}, nil
}

// parseCodes reads one code per line, skipping blanks.
func parseCodes(ctx context.Context, r io.Reader) (map[string]struct{}, error) {
	codes := make(map[string]struct{})
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			codes[line] = struct{}{}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading campaign file: %w", err)
	}

	return codes, nil
}

// Percent returns the discount percentage for a code and whether the code is
// known. The fixed table wins over campaign files.
func (v *Validator) Percent(code string) (float64, bool) {
	if code == "" {
		return 0, false
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if percent, ok := v.table[code]; ok {
		return percent, true
	}

	for _, c := range v.campaigns {
		// Bloom miss means the code is definitely not in this set.
		if !c.filter.TestString(code) {
			continue
		}
		if _, ok := c.codes[code]; ok {
			return c.percent, true
		}
	}

	return 0, false
}

// Stats returns statistics about the loaded coupon data.
func (v *Validator) Stats() map[string]interface{} {
	v.mu.RLock()
	defer v.mu.RUnlock()

	campaignSizes := make([]int, len(v.campaigns))
	totalCodes := len(v.table)
	for i, c := range v.campaigns {
		campaignSizes[i] = len(c.codes)
		totalCodes += len(c.codes)
	}

	return map[string]interface{}{
		"table_codes":    len(v.table),
		"campaign_files": len(v.campaigns),
		"campaign_sizes": campaignSizes,
		"total_codes":    totalCodes,
	}
}
