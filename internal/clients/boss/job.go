package boss

import "strings"

// JobPreview is a single element of the search result list.
type JobPreview struct {
	EncryptJobID string   `json:"encryptJobId"`
	JobName      string   `json:"jobName"`
	BrandName    string   `json:"brandName"`
	SalaryDesc   string   `json:"salaryDesc"`
	CityName     string   `json:"cityName"`
	AreaDistrict string   `json:"areaDistrict"`
	JobLabels    []string `json:"jobLabels"`
}

func (j JobPreview) Description() string {
	return strings.Join(j.JobLabels, ", ")
}
