// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package awsutil

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// MockS3Client - mock S3 client for unit tests. Don't forget to call FinishTest() at the end of your test to check
// that all calls to S3 were made, and there were no unexpected calls!
// Only the calls made when writing stitch requests are mocked, anything else panics via the nil embedded interface
type MockS3Client struct {
	mutex sync.Mutex

	s3iface.S3API

	// Expected requests
	ExpHeadObjectInput []s3.HeadObjectInput
	ExpPutObjectInput  []s3.PutObjectInput

	// Responses replayed as each request comes in. A nil HeadObject output means "not found"
	QueuedHeadObjectOutput []*s3.HeadObjectOutput
	QueuedPutObjectOutput  []*s3.PutObjectOutput
}

const ErrNoMoreInputsExpected = "No more inputs expected for "
const ErrWrongInput = "Incorrect input in "
const ErrNothingToReturn = "Nothing to return from "
const ErrReturningError = "Returning error from "

// NOTE: This function MUST be called at the end of a unit test/example test. Use defer when declaring MockS3Client!
func (m *MockS3Client) FinishTest() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var err error
	if len(m.ExpHeadObjectInput) > 0 {
		err = errors.New("Test expected more HeadObject calls to func")
	} else if len(m.ExpPutObjectInput) > 0 {
		err = errors.New("Test expected more PutObject calls to func")
	} else if len(m.QueuedHeadObjectOutput) > 0 {
		err = errors.New("Remaining output HeadObject for func")
	} else if len(m.QueuedPutObjectOutput) > 0 {
		err = errors.New("Remaining output PutObject for func")
	}

	// Example tests get this in their output
	if err != nil {
		fmt.Println(err)
	}

	return err
}

func (m *MockS3Client) HeadObject(input *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	name := "HeadObject"
	if len(m.ExpHeadObjectInput) <= 0 {
		return nil, errors.New(ErrNoMoreInputsExpected + name)
	}

	expItem := m.ExpHeadObjectInput[0]
	m.ExpHeadObjectInput = m.ExpHeadObjectInput[1:]

	if *input.Bucket != *expItem.Bucket || *input.Key != *expItem.Key {
		return nil, fmt.Errorf("%v %v\nexpected: \"%v/%v\"\nS3 recvd: \"%v/%v\"", ErrWrongInput, name, *expItem.Bucket, *expItem.Key, *input.Bucket, *input.Key)
	}

	if len(m.QueuedHeadObjectOutput) <= 0 {
		return nil, errors.New(ErrNothingToReturn + name)
	}

	result := m.QueuedHeadObjectOutput[0]
	m.QueuedHeadObjectOutput = m.QueuedHeadObjectOutput[1:]

	if result == nil {
		return nil, awserr.New("NotFound", "Not Found", nil)
	}
	return result, nil
}

func (m *MockS3Client) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	name := "PutObject"
	if len(m.ExpPutObjectInput) <= 0 {
		return nil, errors.New(ErrNoMoreInputsExpected + name)
	}

	expItem := m.ExpPutObjectInput[0]
	m.ExpPutObjectInput = m.ExpPutObjectInput[1:]

	if *input.Bucket != *expItem.Bucket {
		return nil, fmt.Errorf("%v %v - bucket\nexpected: \"%v\"\nS3 recvd: \"%v\"", ErrWrongInput, name, *expItem.Bucket, *input.Bucket)
	}

	if *input.Key != *expItem.Key {
		return nil, fmt.Errorf("%v %v - key\nexpected: \"%v\"\nS3 recvd: \"%v\"", ErrWrongInput, name, *expItem.Key, *input.Key)
	}

	if expItem.Body != nil {
		inpBody := getAsStr(input.Body)
		expBody := getAsStr(expItem.Body)
		if inpBody != expBody {
			return nil, fmt.Errorf("%v %v - body\nexpected: \"%v\"\nS3 recvd: \"%v\"", ErrWrongInput, name, expBody, inpBody)
		}
	}

	if len(m.QueuedPutObjectOutput) <= 0 {
		return nil, errors.New(ErrNothingToReturn + name)
	}

	result := m.QueuedPutObjectOutput[0]
	m.QueuedPutObjectOutput = m.QueuedPutObjectOutput[1:]

	if result == nil {
		return nil, errors.New(ErrReturningError + name)
	}
	return result, nil
}

func getAsStr(r io.ReadSeeker) string {
	if r == nil {
		return ""
	}
	r.Seek(0, io.SeekStart)
	b, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return string(b)
}
