package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/cloudwatchiface"
)

// MetricsService retrieves instance utilization metrics.
type MetricsService struct {
	Client cloudwatchiface.ClientAPI
}

// NewMetrics returns a metrics service using the given configuration.
func NewMetrics(cfg aws.Config) *MetricsService {
	return &MetricsService{Client: cloudwatch.New(cfg)}
}

// CPUAverage returns the average CPU utilization of an instance over the
// given number of days, in percent. Returns zero without error when no
// datapoints were recorded for the window.
func (s *MetricsService) CPUAverage(ctx context.Context, instanceID string, days int) (float64, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	input := &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String("AWS/EC2"),
		MetricName: aws.String("CPUUtilization"),
		Dimensions: []cloudwatch.Dimension{
			{Name: aws.String("InstanceId"), Value: aws.String(instanceID)},
		},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int64(3600),
		Statistics: []cloudwatch.Statistic{cloudwatch.StatisticAverage},
	}

	var resp *cloudwatch.GetMetricStatisticsResponse
	err := retry(ctx, func() error {
		req := s.Client.GetMetricStatisticsRequest(input)
		var err error
		resp, err = req.Send(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	if len(resp.Datapoints) == 0 {
		return 0, nil
	}
	var sum float64
	for _, dp := range resp.Datapoints {
		sum += aws.Float64Value(dp.Average)
	}
	return sum / float64(len(resp.Datapoints)), nil
}
