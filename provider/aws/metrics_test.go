package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/cloudwatchiface"
)

type fakeCloudWatch struct {
	cloudwatchiface.ClientAPI
	out *cloudwatch.GetMetricStatisticsOutput

	gotInput *cloudwatch.GetMetricStatisticsInput
}

func (f *fakeCloudWatch) GetMetricStatisticsRequest(input *cloudwatch.GetMetricStatisticsInput) cloudwatch.GetMetricStatisticsRequest {
	f.gotInput = input
	return cloudwatch.GetMetricStatisticsRequest{Request: cannedRequest(f.out, nil), Input: input}
}

func TestMetricsService_CPUAverage(t *testing.T) {
	fake := &fakeCloudWatch{
		out: &cloudwatch.GetMetricStatisticsOutput{
			Datapoints: []cloudwatch.Datapoint{
				{Average: aws.Float64(10)},
				{Average: aws.Float64(30)},
				{Average: aws.Float64(20)},
			},
		},
	}
	svc := &MetricsService{Client: fake}
	got, err := svc.CPUAverage(context.Background(), "i-1", 7)
	if err != nil {
		t.Fatalf("CPUAverage() error = %v", err)
	}
	if got != 20 {
		t.Errorf("CPUAverage() = %v, want 20", got)
	}

	in := fake.gotInput
	if aws.StringValue(in.Namespace) != "AWS/EC2" || aws.StringValue(in.MetricName) != "CPUUtilization" {
		t.Errorf("queried %s/%s, want AWS/EC2/CPUUtilization",
			aws.StringValue(in.Namespace), aws.StringValue(in.MetricName))
	}
	if len(in.Dimensions) != 1 || aws.StringValue(in.Dimensions[0].Value) != "i-1" {
		t.Errorf("Dimensions = %v, want single InstanceId i-1", in.Dimensions)
	}
}

func TestMetricsService_CPUAverage_noData(t *testing.T) {
	fake := &fakeCloudWatch{out: &cloudwatch.GetMetricStatisticsOutput{}}
	svc := &MetricsService{Client: fake}
	got, err := svc.CPUAverage(context.Background(), "i-1", 7)
	if err != nil {
		t.Fatalf("CPUAverage() error = %v", err)
	}
	if got != 0 {
		t.Errorf("CPUAverage() = %v, want 0", got)
	}
}
